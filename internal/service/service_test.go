package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/milanbouzek/farmshop-system/internal/model"
	"github.com/milanbouzek/farmshop-system/internal/repository"
	"github.com/milanbouzek/farmshop-system/internal/validation"
)

type stubRepo struct {
	stock    *model.Stock
	snapshot *model.CapacitySnapshot

	createdOrder       *model.Order
	createOrderErr     error
	createdReservation *model.Reservation
	createReservErr    error

	confirmedOrder *model.Order
	confirmErr     error

	snapshotCalls int
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) GetStock(ctx context.Context) (*model.Stock, error) {
	return s.stock, nil
}

func (s *stubRepo) UpdateStock(ctx context.Context, standard, lowChol int) error { return nil }

func (s *stubRepo) GetDailyProduction(ctx context.Context) (int, error) { return 0, nil }

func (s *stubRepo) SetDailyProduction(ctx context.Context, rate int) error { return nil }

func (s *stubRepo) OutstandingReserved(ctx context.Context) (int, error) { return 0, nil }

func (s *stubRepo) CapacitySnapshot(ctx context.Context) (*model.CapacitySnapshot, error) {
	s.snapshotCalls++
	return s.snapshot, nil
}

func (s *stubRepo) CreateOrder(ctx context.Context, o *model.Order) error {
	if s.createOrderErr != nil {
		return s.createOrderErr
	}
	s.createdOrder = o
	return nil
}

func (s *stubRepo) CreateReservation(ctx context.Context, res *model.Reservation) error {
	if s.createReservErr != nil {
		return s.createReservErr
	}
	s.createdReservation = res
	return nil
}

func (s *stubRepo) GetOrder(ctx context.Context, publicID string) (*model.Order, error) {
	return nil, nil
}

func (s *stubRepo) ListOrders(ctx context.Context) ([]model.Order, error) { return nil, nil }

func (s *stubRepo) GetReservation(ctx context.Context, publicID string) (*model.Reservation, error) {
	return nil, nil
}

func (s *stubRepo) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	return nil, nil
}

func (s *stubRepo) ConfirmReservation(ctx context.Context, publicID string) (*model.Order, error) {
	return s.confirmedOrder, s.confirmErr
}

func (s *stubRepo) CancelReservation(ctx context.Context, publicID string) error { return nil }

func (s *stubRepo) AdvanceOrderStatus(ctx context.Context, publicID string) (model.OrderStatus, error) {
	return model.OrderStatusProcessing, nil
}

func (s *stubRepo) CancelOrder(ctx context.Context, publicID string) error { return nil }

func (s *stubRepo) SetOrderPaid(ctx context.Context, publicID string, paid bool) error { return nil }

func (s *stubRepo) OverrideOrderPrice(ctx context.Context, publicID string, price int) error {
	return nil
}

func (s *stubRepo) UpdateOrderQuantities(ctx context.Context, publicID string, standard, lowChol int) (int, error) {
	return 0, nil
}

func (s *stubRepo) CreateExpense(ctx context.Context, e *model.Expense) error { return nil }

func (s *stubRepo) ListExpenses(ctx context.Context) ([]model.Expense, error) { return nil, nil }

func (s *stubRepo) DeleteExpense(ctx context.Context, id int64) error { return nil }

func (s *stubRepo) AddProductionRecord(ctx context.Context, rec *model.ProductionRecord) error {
	return nil
}

func (s *stubRepo) ListProduction(ctx context.Context) ([]model.ProductionRecord, error) {
	return nil, nil
}

type stubNotifier struct {
	err    error
	called chan struct{}
}

func (n *stubNotifier) NotifyNewOrder(ctx context.Context, kind, name, contact string, standard, lowChol int) error {
	if n.called != nil {
		close(n.called)
	}
	return n.err
}

type stubCache struct {
	snapshot *model.CapacitySnapshot
	getErr   error

	setCalls        int
	invalidateCalls int
}

func (c *stubCache) GetSnapshot(ctx context.Context) (*model.CapacitySnapshot, error) {
	return c.snapshot, c.getErr
}

func (c *stubCache) SetSnapshot(ctx context.Context, snap *model.CapacitySnapshot) error {
	c.setCalls++
	return nil
}

func (c *stubCache) InvalidateSnapshot(ctx context.Context) error {
	c.invalidateCalls++
	return nil
}

// Среда 2025-06-04.
var testToday = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository, notifier Notifier, snapshots SnapshotCache) *Service {
	svc := NewService(repo, notifier, snapshots, zap.NewNop())
	svc.now = func() time.Time { return testToday }
	return svc
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSubmitOrder_Success(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil, nil)

	o, err := svc.SubmitOrder(context.Background(), OrderInput{
		Name:       "Jana Novakova",
		Email:      "jana@example.com",
		Standard:   10,
		LowChol:    0,
		Location:   model.LocationFarm,
		PickupDate: datePtr(2025, 6, 5),
	})
	if err != nil {
		t.Fatalf("SubmitOrder error: %v", err)
	}

	if o.Price != 50 {
		t.Fatalf("Price = %d, want 50", o.Price)
	}
	if o.Status != model.OrderStatusNew {
		t.Fatalf("Status = %s, want %s", o.Status, model.OrderStatusNew)
	}
	if o.PublicID == "" {
		t.Fatalf("PublicID must be assigned")
	}
	if repo.createdOrder == nil {
		t.Fatalf("order was not persisted")
	}
}

func TestSubmitOrder_MissingName(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil, nil)

	_, err := svc.SubmitOrder(context.Background(), OrderInput{
		Standard:   10,
		Location:   model.LocationFarm,
		PickupDate: datePtr(2025, 6, 5),
	})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if repo.createdOrder != nil {
		t.Fatalf("order must not be persisted on validation error")
	}
}

func TestSubmitOrder_WeekendAtFactory(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil, nil)

	_, err := svc.SubmitOrder(context.Background(), OrderInput{
		Name:       "Petr",
		Standard:   10,
		Location:   model.LocationFactory,
		PickupDate: datePtr(2025, 6, 7), // суббота
	})
	if !errors.Is(err, ErrInvalidPickupDate) {
		t.Fatalf("expected ErrInvalidPickupDate, got %v", err)
	}
}

func TestSubmitOrder_DateRequired(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil, nil)

	_, err := svc.SubmitOrder(context.Background(), OrderInput{
		Name:     "Petr",
		Standard: 10,
		Location: model.LocationFarm,
	})
	if !errors.Is(err, ErrInvalidPickupDate) {
		t.Fatalf("expected ErrInvalidPickupDate, got %v", err)
	}
}

func TestSubmitReservation_OverRequestCap(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil, nil)

	_, err := svc.SubmitReservation(context.Background(), OrderInput{
		Name:       "Petr",
		Standard:   15,
		LowChol:    10,
		Location:   model.LocationFarm,
		PickupDate: datePtr(2025, 6, 5),
	})
	if !errors.Is(err, validation.ErrExceedsRequestCap) {
		t.Fatalf("expected ErrExceedsRequestCap, got %v", err)
	}
	if repo.createdReservation != nil {
		t.Fatalf("reservation must not be persisted on validation error")
	}
}

func TestSubmitReservation_GlobalCapPassthrough(t *testing.T) {
	repo := &stubRepo{
		createReservErr: &model.CapacityError{Remaining: 10},
	}
	svc := newTestService(repo, nil, nil)

	_, err := svc.SubmitReservation(context.Background(), OrderInput{
		Name:       "Petr",
		Standard:   20,
		Location:   model.LocationFarm,
		PickupDate: datePtr(2025, 6, 5),
	})

	var capErr *model.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Remaining != 10 {
		t.Fatalf("Remaining = %d, want 10", capErr.Remaining)
	}
}

func TestSubmitOrder_NotifierFailureDoesNotFail(t *testing.T) {
	notifier := &stubNotifier{
		err:    errors.New("smtp down"),
		called: make(chan struct{}),
	}
	svc := newTestService(&stubRepo{}, notifier, nil)

	o, err := svc.SubmitOrder(context.Background(), OrderInput{
		Name:       "Jana",
		Standard:   10,
		Location:   model.LocationFarm,
		PickupDate: datePtr(2025, 6, 5),
	})
	if err != nil {
		t.Fatalf("SubmitOrder error: %v", err)
	}
	if o == nil {
		t.Fatalf("order must be created despite notifier failure")
	}

	select {
	case <-notifier.called:
	case <-time.After(time.Second):
		t.Fatalf("notifier was not called")
	}
}

func TestAvailability_CacheMiss(t *testing.T) {
	repo := &stubRepo{
		snapshot: &model.CapacitySnapshot{StockStandard: 40, StockLowChol: 10, Reserved: 10, DailyProduction: 5},
	}
	snapshots := &stubCache{getErr: errors.New("snapshot not cached")}
	svc := newTestService(repo, nil, snapshots)

	av, err := svc.Availability(context.Background(), 20)
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}

	if av.Available != 40 {
		t.Fatalf("Available = %d, want 40", av.Available)
	}
	if av.DaysNeeded != 0 {
		t.Fatalf("DaysNeeded = %d, want 0", av.DaysNeeded)
	}
	wantDate := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	if !av.EarliestPickup.Equal(wantDate) {
		t.Fatalf("EarliestPickup = %v, want %v", av.EarliestPickup, wantDate)
	}
	if snapshots.setCalls != 1 {
		t.Fatalf("snapshot must be cached after a miss")
	}
}

func TestAvailability_CacheHit(t *testing.T) {
	repo := &stubRepo{}
	snapshots := &stubCache{
		snapshot: &model.CapacitySnapshot{DailyProduction: 5},
	}
	svc := newTestService(repo, nil, snapshots)

	av, err := svc.Availability(context.Background(), 12)
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}

	if repo.snapshotCalls != 0 {
		t.Fatalf("repository must not be queried on cache hit")
	}
	if av.DaysNeeded != 3 {
		t.Fatalf("DaysNeeded = %d, want 3", av.DaysNeeded)
	}
	wantDate := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	if !av.EarliestPickup.Equal(wantDate) {
		t.Fatalf("EarliestPickup = %v, want %v", av.EarliestPickup, wantDate)
	}
}

func TestConfirmReservation_InvalidatesSnapshot(t *testing.T) {
	repo := &stubRepo{
		confirmedOrder: &model.Order{PublicID: "abc", Price: 120},
	}
	snapshots := &stubCache{}
	svc := newTestService(repo, nil, snapshots)

	o, err := svc.ConfirmReservation(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("ConfirmReservation error: %v", err)
	}
	if o.Price != 120 {
		t.Fatalf("Price = %d, want 120", o.Price)
	}
	if snapshots.invalidateCalls != 1 {
		t.Fatalf("snapshot must be invalidated after confirmation")
	}
}

func TestConfirmReservation_MissingPickupDate(t *testing.T) {
	repo := &stubRepo{confirmErr: repository.ErrMissingPickupDate}
	snapshots := &stubCache{}
	svc := newTestService(repo, nil, snapshots)

	o, err := svc.ConfirmReservation(context.Background(), "res-1")
	if !errors.Is(err, repository.ErrMissingPickupDate) {
		t.Fatalf("expected ErrMissingPickupDate, got %v", err)
	}
	if o != nil {
		t.Fatalf("no order must be returned for a dateless reservation")
	}
	if snapshots.invalidateCalls != 0 {
		t.Fatalf("snapshot must not be invalidated on a failed confirmation")
	}
}

func TestUpdateOrderQuantities_Validates(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil, nil)

	_, err := svc.UpdateOrderQuantities(context.Background(), "abc", 11, 0)
	if !errors.Is(err, validation.ErrNotMultiple) {
		t.Fatalf("expected ErrNotMultiple, got %v", err)
	}
}

func TestStartSnapshotRefresh_RunsUntilCanceled(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil, &stubCache{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartSnapshotRefresh(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("refresher must keep running until the context is canceled")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("refresher did not stop after context cancellation")
	}
}
