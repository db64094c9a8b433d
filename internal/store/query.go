package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"math"
	"slices"

	"salon-scheduler/internal/model"
)

// TotalRevenue sums the price of every appointment booked for serviceID on
// date. An appointment whose service no longer resolves is logged and
// skipped rather than failing the whole query. A sum past math.MaxUint64
// returns ErrOverflow.
func (s *Store) TotalRevenue(ctx context.Context, serviceID uint64, date string) (uint64, error) {
	matched, err := s.appointments.filter(ctx, func(a model.Appointment) bool {
		return a.ServiceID == serviceID && a.Date == date
	})
	if err != nil {
		return 0, err
	}

	var total uint64
	for _, a := range matched {
		svc, err := s.services.get(ctx, a.ServiceID)
		if errors.Is(err, ErrNotFound) {
			log.Printf("store: total revenue: skipping %v", &ReferenceError{AppointmentID: a.ID, Kind: "service", ID: a.ServiceID})
			continue
		}
		if err != nil {
			return 0, err
		}
		if total > math.MaxUint64-svc.Price {
			return 0, fmt.Errorf("total revenue for service %d on %s: %w", serviceID, date, ErrOverflow)
		}
		total += svc.Price
	}
	return total, nil
}

// MostPopularService returns the service with the most appointments, or nil
// when there are no appointments. Ties go to the lowest service id.
func (s *Store) MostPopularService(ctx context.Context) (*model.Service, error) {
	appts, err := s.appointments.list(ctx)
	if err != nil {
		return nil, err
	}
	id, first, ok := mostFrequent(appts, func(a model.Appointment) uint64 { return a.ServiceID })
	if !ok {
		return nil, nil
	}
	svc, err := s.services.get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, &ReferenceError{AppointmentID: first, Kind: "service", ID: id}
	}
	return svc, err
}

// MostPopularClient mirrors MostPopularService over client ids.
func (s *Store) MostPopularClient(ctx context.Context) (*model.Client, error) {
	appts, err := s.appointments.list(ctx)
	if err != nil {
		return nil, err
	}
	id, first, ok := mostFrequent(appts, func(a model.Appointment) uint64 { return a.ClientID })
	if !ok {
		return nil, nil
	}
	c, err := s.clients.get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, &ReferenceError{AppointmentID: first, Kind: "client", ID: id}
	}
	return c, err
}

// mostFrequent counts key over appts and returns the most frequent key
// (lowest key on ties) plus the first appointment that carries it.
func mostFrequent(appts []model.Appointment, key func(model.Appointment) uint64) (winner, firstAppt uint64, ok bool) {
	if len(appts) == 0 {
		return 0, 0, false
	}
	counts := make(map[uint64]int)
	first := make(map[uint64]uint64)
	for _, a := range appts {
		k := key(a)
		if counts[k] == 0 {
			first[k] = a.ID
		}
		counts[k]++
	}

	best := -1
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		if counts[k] > best {
			winner, best = k, counts[k]
		}
	}
	return winner, first[winner], true
}
