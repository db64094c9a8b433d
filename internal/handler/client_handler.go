package handler

import (
	"context"

	"salon-scheduler/internal/model"
)

func (h *Handler) CreateClient(ctx context.Context, p model.ClientPayload) (*model.Client, error) {
	return result(h.store.CreateClient(ctx, p))
}

func (h *Handler) UpdateClient(ctx context.Context, id uint64, p model.ClientPayload) (*model.Client, error) {
	return result(h.store.UpdateClient(ctx, id, p))
}

func (h *Handler) GetClient(ctx context.Context, id uint64) (*model.Client, error) {
	return result(h.store.GetClient(ctx, id))
}

func (h *Handler) ListClients(ctx context.Context) ([]model.Client, error) {
	return result(h.store.ListClients(ctx))
}

func (h *Handler) DeleteClient(ctx context.Context, id uint64) error {
	if err := h.store.DeleteClient(ctx, id); err != nil {
		return rpcError(err)
	}
	return nil
}
