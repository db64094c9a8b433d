package store

import (
	"context"

	"salon-scheduler/internal/model"
)

func validateService(p model.ServicePayload) error {
	if err := required("service", "name", p.Name); err != nil {
		return err
	}
	if err := required("service", "description", p.Description); err != nil {
		return err
	}
	if err := positive("service", "duration", p.Duration); err != nil {
		return err
	}
	return positive("service", "price", p.Price)
}

func (s *Store) CreateService(ctx context.Context, p model.ServicePayload) (*model.Service, error) {
	if err := validateService(p); err != nil {
		return nil, err
	}
	return s.services.create(ctx, func(id uint64) model.Service {
		return model.Service{ID: id, Name: p.Name, Description: p.Description, Duration: p.Duration, Price: p.Price}
	})
}

func (s *Store) UpdateService(ctx context.Context, id uint64, p model.ServicePayload) (*model.Service, error) {
	return s.services.update(ctx, id, func(prev model.Service) model.Service {
		return model.Service{ID: prev.ID, Name: p.Name, Description: p.Description, Duration: p.Duration, Price: p.Price}
	})
}

func (s *Store) GetService(ctx context.Context, id uint64) (*model.Service, error) {
	return s.services.get(ctx, id)
}

func (s *Store) DeleteService(ctx context.Context, id uint64) error {
	return s.services.remove(ctx, id)
}

func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	return s.services.list(ctx)
}
