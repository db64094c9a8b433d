package store

import (
	"context"

	"salon-scheduler/internal/model"
)

func validateClient(p model.ClientPayload) error {
	for _, f := range []struct{ name, v string }{
		{"name", p.Name}, {"email", p.Email}, {"phone", p.Phone}, {"address", p.Address},
	} {
		if err := required("client", f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateClient(ctx context.Context, p model.ClientPayload) (*model.Client, error) {
	if err := validateClient(p); err != nil {
		return nil, err
	}
	return s.clients.create(ctx, func(id uint64) model.Client {
		return model.Client{ID: id, Name: p.Name, Email: p.Email, Phone: p.Phone, Address: p.Address}
	})
}

func (s *Store) UpdateClient(ctx context.Context, id uint64, p model.ClientPayload) (*model.Client, error) {
	return s.clients.update(ctx, id, func(prev model.Client) model.Client {
		return model.Client{ID: prev.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Address: p.Address}
	})
}

func (s *Store) GetClient(ctx context.Context, id uint64) (*model.Client, error) {
	return s.clients.get(ctx, id)
}

func (s *Store) DeleteClient(ctx context.Context, id uint64) error {
	return s.clients.remove(ctx, id)
}

func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.clients.list(ctx)
}
