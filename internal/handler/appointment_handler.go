package handler

import (
	"context"

	"salon-scheduler/internal/model"
)

func (h *Handler) CreateAppointment(ctx context.Context, p model.AppointmentPayload) (*model.Appointment, error) {
	return result(h.store.CreateAppointment(ctx, p))
}

func (h *Handler) UpdateAppointment(ctx context.Context, id uint64, p model.AppointmentPayload) (*model.Appointment, error) {
	return result(h.store.UpdateAppointment(ctx, id, p))
}

func (h *Handler) GetAppointment(ctx context.Context, id uint64) (*model.Appointment, error) {
	return result(h.store.GetAppointment(ctx, id))
}

func (h *Handler) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	return result(h.store.ListAppointments(ctx))
}

func (h *Handler) DeleteAppointment(ctx context.Context, id uint64) error {
	if err := h.store.DeleteAppointment(ctx, id); err != nil {
		return rpcError(err)
	}
	return nil
}

func (h *Handler) ListAppointmentsByClient(ctx context.Context, clientID uint64) ([]model.Appointment, error) {
	return result(h.store.ListAppointmentsByClient(ctx, clientID))
}

func (h *Handler) ListAppointmentsByService(ctx context.Context, serviceID uint64) ([]model.Appointment, error) {
	return result(h.store.ListAppointmentsByService(ctx, serviceID))
}

func (h *Handler) ListAppointmentsByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	return result(h.store.ListAppointmentsByDate(ctx, date))
}

func (h *Handler) ListAppointmentsByStatus(ctx context.Context, st string) ([]model.Appointment, error) {
	return result(h.store.ListAppointmentsByStatus(ctx, st))
}

func (h *Handler) TotalRevenue(ctx context.Context, serviceID uint64, date string) (uint64, error) {
	return result(h.store.TotalRevenue(ctx, serviceID, date))
}

// MostPopularService returns nil, nil when nothing has been booked.
func (h *Handler) MostPopularService(ctx context.Context) (*model.Service, error) {
	return result(h.store.MostPopularService(ctx))
}

func (h *Handler) MostPopularClient(ctx context.Context) (*model.Client, error) {
	return result(h.store.MostPopularClient(ctx))
}
