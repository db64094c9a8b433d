package handler

import (
	"context"

	"salon-scheduler/internal/model"
)

func (h *Handler) CreateService(ctx context.Context, p model.ServicePayload) (*model.Service, error) {
	return result(h.store.CreateService(ctx, p))
}

func (h *Handler) UpdateService(ctx context.Context, id uint64, p model.ServicePayload) (*model.Service, error) {
	return result(h.store.UpdateService(ctx, id, p))
}

func (h *Handler) GetService(ctx context.Context, id uint64) (*model.Service, error) {
	return result(h.store.GetService(ctx, id))
}

func (h *Handler) ListServices(ctx context.Context) ([]model.Service, error) {
	return result(h.store.ListServices(ctx))
}

func (h *Handler) DeleteService(ctx context.Context, id uint64) error {
	if err := h.store.DeleteService(ctx, id); err != nil {
		return rpcError(err)
	}
	return nil
}
