package store_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"salon-scheduler/internal/medium"
	"salon-scheduler/internal/model"
	"salon-scheduler/internal/region"
	"salon-scheduler/internal/store"
)

var (
	created = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	later   = created.Add(90 * time.Minute)
)

func setup(t *testing.T) *store.Store {
	t.Helper()
	return store.New(region.NewManager(medium.NewMemory()), store.WithClock(func() time.Time { return created }))
}

func haircut() model.ServicePayload {
	return model.ServicePayload{Name: "Haircut", Description: "Basic cut", Duration: 30, Price: 20}
}

func ada() model.ClientPayload {
	return model.ClientPayload{Name: "Ada", Email: "ada@example.com", Phone: "555-0100", Address: "1 Loop Rd"}
}

func booking(clientID, serviceID uint64, date, status string) model.AppointmentPayload {
	return model.AppointmentPayload{ClientID: clientID, ServiceID: serviceID, Date: date, Time: "10:00", Status: status}
}

func mustService(t *testing.T, st *store.Store, p model.ServicePayload) *model.Service {
	t.Helper()
	s, err := st.CreateService(context.Background(), p)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return s
}

func mustClient(t *testing.T, st *store.Store, p model.ClientPayload) *model.Client {
	t.Helper()
	c, err := st.CreateClient(context.Background(), p)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func mustAppointment(t *testing.T, st *store.Store, p model.AppointmentPayload) *model.Appointment {
	t.Helper()
	a, err := st.CreateAppointment(context.Background(), p)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

// ----- crud -----

func TestCreateAndGet(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	c := mustClient(t, st, ada())
	if c.ID != 0 {
		t.Errorf("first id: got %d, want 0", c.ID)
	}
	got, err := st.GetClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != *c {
		t.Errorf("got %+v, want %+v", got, c)
	}

	a := mustAppointment(t, st, booking(0, 0, "01/01/2024", "booked"))
	if !a.CreatedAt.Equal(created) {
		t.Errorf("created at: got %v", a.CreatedAt)
	}
	if !a.UpdatedAt.IsZero() {
		t.Errorf("updated at should be unset, got %v", a.UpdatedAt)
	}
}

func TestCreateValidation(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		create func() error
	}{
		{"client empty name", func() error {
			p := ada()
			p.Name = ""
			_, err := st.CreateClient(ctx, p)
			return err
		}},
		{"client empty address", func() error {
			p := ada()
			p.Address = ""
			_, err := st.CreateClient(ctx, p)
			return err
		}},
		{"service empty description", func() error {
			p := haircut()
			p.Description = ""
			_, err := st.CreateService(ctx, p)
			return err
		}},
		{"service zero duration", func() error {
			p := haircut()
			p.Duration = 0
			_, err := st.CreateService(ctx, p)
			return err
		}},
		{"service zero price", func() error {
			p := haircut()
			p.Price = 0
			_, err := st.CreateService(ctx, p)
			return err
		}},
		{"appointment empty date", func() error {
			_, err := st.CreateAppointment(ctx, booking(0, 0, "", "booked"))
			return err
		}},
		{"appointment empty status", func() error {
			_, err := st.CreateAppointment(ctx, booking(0, 0, "01/01/2024", ""))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.create()
			if !errors.Is(err, store.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var ve *store.ValidationError
			if !errors.As(err, &ve) || ve.Field == "" {
				t.Errorf("expected field in error, got %v", err)
			}
		})
	}
}

func TestRejectedCreateKeepsIdentity(t *testing.T) {
	st := setup(t)
	bad := haircut()
	bad.Price = 0
	if _, err := st.CreateService(context.Background(), bad); err == nil {
		t.Fatal("expected validation error")
	}
	if s := mustService(t, st, haircut()); s.ID != 0 {
		t.Errorf("rejected payload consumed an id: got %d", s.ID)
	}
}

func TestOversizedRecordKeepsIdentity(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	big := ada()
	big.Address = strings.Repeat("x", 1100)
	if _, err := st.CreateClient(ctx, big); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("oversized create: got %v, want ErrValidation", err)
	}
	c := mustClient(t, st, ada())
	if c.ID != 0 {
		t.Errorf("oversized payload consumed an id: got %d", c.ID)
	}

	if _, err := st.UpdateClient(ctx, c.ID, big); !errors.Is(err, store.ErrValidation) {
		t.Errorf("oversized update: got %v, want ErrValidation", err)
	}
	if got, _ := st.GetClient(ctx, c.ID); got.Address != ada().Address {
		t.Errorf("oversized update was written: %q", got.Address[:10])
	}
}

func TestIdentitiesNeverReused(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	seen := map[uint64]bool{}
	for i := 0; i < 3; i++ {
		seen[mustClient(t, st, ada()).ID] = true
	}
	st.DeleteClient(ctx, 2)
	st.DeleteClient(ctx, 1)

	c := mustClient(t, st, ada())
	if seen[c.ID] {
		t.Errorf("id %d reused after delete", c.ID)
	}
	if c.ID != 3 {
		t.Errorf("got %d, want 3", c.ID)
	}
}

func TestUpdate(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		if calls == 1 {
			return created
		}
		return later
	}
	st := store.New(region.NewManager(medium.NewMemory()), store.WithClock(clock))
	ctx := context.Background()

	a := mustAppointment(t, st, booking(0, 0, "01/01/2024", "booked"))
	up, err := st.UpdateAppointment(ctx, a.ID, booking(3, 4, "02/01/2024", "done"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.ID != a.ID {
		t.Errorf("id changed: %d -> %d", a.ID, up.ID)
	}
	if !up.CreatedAt.Equal(created) {
		t.Errorf("created at changed: %v", up.CreatedAt)
	}
	if !up.UpdatedAt.Equal(later) {
		t.Errorf("updated at: got %v, want %v", up.UpdatedAt, later)
	}

	got, _ := st.GetAppointment(ctx, a.ID)
	if got.ClientID != 3 || got.ServiceID != 4 || got.Date != "02/01/2024" || got.Status != "done" {
		t.Errorf("update not persisted: %+v", got)
	}
	if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(created) {
		t.Errorf("timestamps not persisted: %+v", got)
	}

	s := mustService(t, st, haircut())
	us, err := st.UpdateService(ctx, s.ID, model.ServicePayload{Name: "Trim", Description: "Quick", Duration: 15, Price: 12})
	if err != nil {
		t.Fatalf("update service: %v", err)
	}
	if us.ID != s.ID || us.Name != "Trim" || us.Price != 12 {
		t.Errorf("got %+v", us)
	}
}

func TestUpdateNotFound(t *testing.T) {
	st := setup(t)
	_, err := st.UpdateClient(context.Background(), 42, ada())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var nf *store.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "client" || nf.ID != 42 {
		t.Errorf("got %#v", err)
	}
	if all, _ := st.ListClients(context.Background()); len(all) != 0 {
		t.Errorf("update created a record: %+v", all)
	}
}

func TestDelete(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	s := mustService(t, st, haircut())

	if err := st.DeleteService(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetService(ctx, s.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if err := st.DeleteService(ctx, s.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestListAfterCreatesAndDeletes(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		p := ada()
		p.Name = fmt.Sprintf("client-%d", i)
		mustClient(t, st, p)
	}
	for _, id := range []uint64{1, 4} {
		if err := st.DeleteClient(ctx, id); err != nil {
			t.Fatalf("delete %d: %v", id, err)
		}
	}
	st.UpdateClient(ctx, 5, model.ClientPayload{Name: "renamed", Email: "e", Phone: "p", Address: "a"})

	all, err := st.ListClients(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []uint64{0, 2, 3, 5}
	if len(all) != len(want) {
		t.Fatalf("got %d records, want %d", len(all), len(want))
	}
	for i, c := range all {
		if c.ID != want[i] {
			t.Errorf("position %d: got id %d, want %d", i, c.ID, want[i])
		}
	}
	if all[3].Name != "renamed" {
		t.Errorf("last write not reflected: %+v", all[3])
	}
}

func TestEmptyStore(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	all, err := st.ListClients(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no clients, got %d", len(all))
	}
	for _, id := range []uint64{0, 1, 1 << 40} {
		if _, err := st.GetClient(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("get %d: expected not found, got %v", id, err)
		}
	}
}

// ----- filters -----

func TestAppointmentFilters(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	mustAppointment(t, st, booking(0, 0, "01/01/2024", "booked"))
	mustAppointment(t, st, booking(1, 0, "01/01/2024", "BOOKED"))
	mustAppointment(t, st, booking(0, 1, "02/01/2024", "Booked"))
	mustAppointment(t, st, booking(2, 1, "01/01/2024", "cancelled"))

	tests := []struct {
		name string
		list func() ([]model.Appointment, error)
		want []uint64
	}{
		{"by client", func() ([]model.Appointment, error) { return st.ListAppointmentsByClient(ctx, 0) }, []uint64{0, 2}},
		{"by service", func() ([]model.Appointment, error) { return st.ListAppointmentsByService(ctx, 1) }, []uint64{2, 3}},
		{"by date", func() ([]model.Appointment, error) { return st.ListAppointmentsByDate(ctx, "01/01/2024") }, []uint64{0, 1, 3}},
		{"by date is exact", func() ([]model.Appointment, error) { return st.ListAppointmentsByDate(ctx, "1/1/2024") }, nil},
		{"by status ignores case", func() ([]model.Appointment, error) { return st.ListAppointmentsByStatus(ctx, "Booked") }, []uint64{0, 1, 2}},
		{"by missing client", func() ([]model.Appointment, error) { return st.ListAppointmentsByClient(ctx, 9) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.list()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d appointments, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("position %d: got %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

// ----- aggregation -----

func TestTotalRevenue(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	s := mustService(t, st, haircut())
	if s.ID != 0 {
		t.Fatalf("service id: got %d", s.ID)
	}
	mustAppointment(t, st, booking(0, 0, "01/01/2024", "booked"))

	total, err := st.TotalRevenue(ctx, 0, "01/01/2024")
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if total != 20 {
		t.Errorf("got %d, want 20", total)
	}

	mustAppointment(t, st, booking(1, 0, "01/01/2024", "done"))
	mustAppointment(t, st, booking(1, 0, "05/01/2024", "done"))
	if total, _ := st.TotalRevenue(ctx, 0, "01/01/2024"); total != 40 {
		t.Errorf("two bookings: got %d, want 40", total)
	}
	if total, _ := st.TotalRevenue(ctx, 0, "09/09/2024"); total != 0 {
		t.Errorf("no match: got %d, want 0", total)
	}
}

func TestTotalRevenueSkipsMissingService(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	s := mustService(t, st, haircut())
	mustAppointment(t, st, booking(0, s.ID, "01/01/2024", "booked"))
	st.DeleteService(ctx, s.ID)

	total, err := st.TotalRevenue(ctx, s.ID, "01/01/2024")
	if err != nil {
		t.Fatalf("missing service should not fail the query: %v", err)
	}
	if total != 0 {
		t.Errorf("got %d, want 0", total)
	}
}

func TestTotalRevenueOverflow(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	pricey := haircut()
	pricey.Price = math.MaxUint64 - 1
	s := mustService(t, st, pricey)
	mustAppointment(t, st, booking(0, s.ID, "01/01/2024", "booked"))

	total, err := st.TotalRevenue(ctx, s.ID, "01/01/2024")
	if err != nil || total != math.MaxUint64-1 {
		t.Fatalf("single booking: %d, %v", total, err)
	}

	mustAppointment(t, st, booking(0, s.ID, "01/01/2024", "booked"))
	if _, err := st.TotalRevenue(ctx, s.ID, "01/01/2024"); !errors.Is(err, store.ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

func TestMostPopularService(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	mustService(t, st, haircut())
	mustService(t, st, model.ServicePayload{Name: "Nails", Description: "Polish", Duration: 45, Price: 30})
	for i := 0; i < 3; i++ {
		mustAppointment(t, st, booking(uint64(i), 0, "01/01/2024", "booked"))
	}
	mustAppointment(t, st, booking(0, 1, "01/01/2024", "booked"))

	got, err := st.MostPopularService(ctx)
	if err != nil {
		t.Fatalf("most popular: %v", err)
	}
	if got == nil || got.ID != 0 {
		t.Fatalf("got %+v, want service 0", got)
	}
}

func TestMostPopularTieGoesToLowestID(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustClient(t, st, ada())
	}
	// clients 2 and 1 both have two bookings; 2 is booked first
	for _, cid := range []uint64{2, 2, 1, 0, 1} {
		mustAppointment(t, st, booking(cid, 0, "01/01/2024", "booked"))
	}

	got, err := st.MostPopularClient(ctx)
	if err != nil {
		t.Fatalf("most popular: %v", err)
	}
	if got == nil || got.ID != 1 {
		t.Errorf("got %+v, want client 1", got)
	}
}

func TestMostPopularEmpty(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	mustService(t, st, haircut())

	svc, err := st.MostPopularService(ctx)
	if err != nil || svc != nil {
		t.Errorf("service: got %+v, %v", svc, err)
	}
	c, err := st.MostPopularClient(ctx)
	if err != nil || c != nil {
		t.Errorf("client: got %+v, %v", c, err)
	}
}

func TestMostPopularMissingReference(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	mustAppointment(t, st, booking(7, 7, "01/01/2024", "booked"))

	_, err := st.MostPopularService(ctx)
	var ref *store.ReferenceError
	if !errors.As(err, &ref) {
		t.Fatalf("expected reference error, got %v", err)
	}
	if ref.Kind != "service" || ref.ID != 7 || ref.AppointmentID != 0 {
		t.Errorf("got %+v", ref)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Error("reference error should match ErrNotFound")
	}

	if _, err := st.MostPopularClient(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("client: expected not found, got %v", err)
	}
}

// ----- durability & concurrency -----

func TestStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	opts := region.Options{Driver: "file", Dir: t.TempDir(), Compression: medium.Zstd}

	mgr, err := region.Open(ctx, opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st := store.New(mgr, store.WithClock(func() time.Time { return created }))
	mustService(t, st, haircut())
	mustService(t, st, haircut())
	a := mustAppointment(t, st, booking(0, 1, "01/01/2024", "booked"))
	st.DeleteService(ctx, 0)
	mgr.Close()

	mgr, err = region.Open(ctx, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer mgr.Close()
	st = store.New(mgr)

	got, err := st.GetAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(created) || got.Date != "01/01/2024" {
		t.Errorf("got %+v", got)
	}
	if s := mustService(t, st, haircut()); s.ID != 2 {
		t.Errorf("counter not persisted: next id %d, want 2", s.ID)
	}
	if total, _ := st.TotalRevenue(ctx, 1, "01/01/2024"); total != 20 {
		t.Errorf("revenue after restart: %d", total)
	}
}

func TestConcurrentCreates(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := st.CreateClient(ctx, ada())
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- c.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
	all, _ := st.ListClients(ctx)
	if len(all) != n {
		t.Errorf("list: got %d, want %d", len(all), n)
	}
}
