package store

import (
	"context"
	"strings"

	"salon-scheduler/internal/model"
)

func validateAppointment(p model.AppointmentPayload) error {
	if err := required("appointment", "date", p.Date); err != nil {
		return err
	}
	if err := required("appointment", "time", p.Time); err != nil {
		return err
	}
	return required("appointment", "status", p.Status)
}

// CreateAppointment does not check that the client or service exist;
// references are soft.
func (s *Store) CreateAppointment(ctx context.Context, p model.AppointmentPayload) (*model.Appointment, error) {
	if err := validateAppointment(p); err != nil {
		return nil, err
	}
	now := s.timestamp()
	return s.appointments.create(ctx, func(id uint64) model.Appointment {
		return model.Appointment{
			ID:        id,
			ClientID:  p.ClientID,
			ServiceID: p.ServiceID,
			Date:      p.Date,
			Time:      p.Time,
			Status:    p.Status,
			CreatedAt: now,
		}
	})
}

// UpdateAppointment keeps the id and creation time and stamps UpdatedAt.
func (s *Store) UpdateAppointment(ctx context.Context, id uint64, p model.AppointmentPayload) (*model.Appointment, error) {
	now := s.timestamp()
	return s.appointments.update(ctx, id, func(prev model.Appointment) model.Appointment {
		return model.Appointment{
			ID:        prev.ID,
			ClientID:  p.ClientID,
			ServiceID: p.ServiceID,
			Date:      p.Date,
			Time:      p.Time,
			Status:    p.Status,
			CreatedAt: prev.CreatedAt,
			UpdatedAt: now,
		}
	})
}

func (s *Store) GetAppointment(ctx context.Context, id uint64) (*model.Appointment, error) {
	return s.appointments.get(ctx, id)
}

func (s *Store) DeleteAppointment(ctx context.Context, id uint64) error {
	return s.appointments.remove(ctx, id)
}

func (s *Store) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	return s.appointments.list(ctx)
}

func (s *Store) ListAppointmentsByClient(ctx context.Context, clientID uint64) ([]model.Appointment, error) {
	return s.appointments.filter(ctx, func(a model.Appointment) bool { return a.ClientID == clientID })
}

func (s *Store) ListAppointmentsByService(ctx context.Context, serviceID uint64) ([]model.Appointment, error) {
	return s.appointments.filter(ctx, func(a model.Appointment) bool { return a.ServiceID == serviceID })
}

func (s *Store) ListAppointmentsByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	return s.appointments.filter(ctx, func(a model.Appointment) bool { return a.Date == date })
}

// ListAppointmentsByStatus matches status case-insensitively.
func (s *Store) ListAppointmentsByStatus(ctx context.Context, status string) ([]model.Appointment, error) {
	return s.appointments.filter(ctx, func(a model.Appointment) bool { return strings.EqualFold(a.Status, status) })
}
