// Package service реализует бизнес-логику фермерского магазина.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milanbouzek/farmshop-system/internal/availability"
	"github.com/milanbouzek/farmshop-system/internal/model"
	"github.com/milanbouzek/farmshop-system/internal/pricing"
	"github.com/milanbouzek/farmshop-system/internal/validation"
)

// ErrNameRequired возвращается, если в заявке не указано имя.
var (
	ErrNameRequired = errors.New("name is required")
	// ErrInvalidLocation возвращается при неизвестной точке самовывоза.
	ErrInvalidLocation = errors.New("unknown pickup location")
	// ErrInvalidPickupDate возвращается при недопустимой дате самовывоза.
	ErrInvalidPickupDate = errors.New("pickup date is not available")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetStock(ctx context.Context) (*model.Stock, error)
	UpdateStock(ctx context.Context, standard, lowChol int) error
	GetDailyProduction(ctx context.Context) (int, error)
	SetDailyProduction(ctx context.Context, rate int) error
	OutstandingReserved(ctx context.Context) (int, error)
	CapacitySnapshot(ctx context.Context) (*model.CapacitySnapshot, error)
	CreateOrder(ctx context.Context, o *model.Order) error
	CreateReservation(ctx context.Context, res *model.Reservation) error
	GetOrder(ctx context.Context, publicID string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetReservation(ctx context.Context, publicID string) (*model.Reservation, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	ConfirmReservation(ctx context.Context, publicID string) (*model.Order, error)
	CancelReservation(ctx context.Context, publicID string) error
	AdvanceOrderStatus(ctx context.Context, publicID string) (model.OrderStatus, error)
	CancelOrder(ctx context.Context, publicID string) error
	SetOrderPaid(ctx context.Context, publicID string, paid bool) error
	OverrideOrderPrice(ctx context.Context, publicID string, price int) error
	UpdateOrderQuantities(ctx context.Context, publicID string, standard, lowChol int) (int, error)
	CreateExpense(ctx context.Context, e *model.Expense) error
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	AddProductionRecord(ctx context.Context, rec *model.ProductionRecord) error
	ListProduction(ctx context.Context) ([]model.ProductionRecord, error)
}

// Notifier описывает контракт отправки уведомлений оператору.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, kind, name, contact string, standard, lowChol int) error
}

// SnapshotCache описывает контракт кэша снимка данных доступности.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context) (*model.CapacitySnapshot, error)
	SetSnapshot(ctx context.Context, snap *model.CapacitySnapshot) error
	InvalidateSnapshot(ctx context.Context) error
}

// Service содержит бизнес-логику фермерского магазина.
type Service struct {
	repo      Repository
	notifier  Notifier
	snapshots SnapshotCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewService создаёт сервис. Notifier и кэш снимка опциональны:
// без них сервис работает напрямую с БД и не шлёт уведомления.
func NewService(repo Repository, notifier Notifier, snapshots SnapshotCache, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// OrderInput — данные заявки на заказ или предзаказ.
type OrderInput struct {
	Name       string
	Email      string
	Phone      string
	Standard   int
	LowChol    int
	Location   model.PickupLocation
	PickupDate *time.Time
	Note       string
}

func (s *Service) validateCommon(in OrderInput) error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if !in.Location.Valid() {
		return ErrInvalidLocation
	}
	if in.PickupDate != nil && !validation.IsValidPickupDate(*in.PickupDate, in.Location, s.now()) {
		return ErrInvalidPickupDate
	}
	return nil
}

// SubmitOrder принимает заказ: повторно проверяет все правила по живым данным,
// считает цену, сохраняет заказ со списанием остатка и уведомляет оператора.
func (s *Service) SubmitOrder(ctx context.Context, in OrderInput) (*model.Order, error) {
	if err := s.validateCommon(in); err != nil {
		return nil, err
	}
	if in.PickupDate == nil {
		return nil, ErrInvalidPickupDate
	}
	if err := validation.ValidateOrderQuantity(in.Standard, in.LowChol); err != nil {
		return nil, err
	}

	o := &model.Order{
		PublicID:   uuid.NewString(),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Standard:   in.Standard,
		LowChol:    in.LowChol,
		Location:   in.Location,
		PickupDate: validation.Midnight(*in.PickupDate),
		Note:       in.Note,
		Price:      pricing.Total(in.Standard, in.LowChol),
		Status:     model.OrderStatusNew,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx)
	s.notify("order", o.Name, contact(o.Email, o.Phone), o.Standard, o.LowChol)

	return o, nil
}

// SubmitReservation принимает предзаказ: помимо правил заказа действует
// лимит на одну заявку и общий лимит невыполненных броней, который
// репозиторий проверяет по живым данным в той же транзакции.
func (s *Service) SubmitReservation(ctx context.Context, in OrderInput) (*model.Reservation, error) {
	if err := s.validateCommon(in); err != nil {
		return nil, err
	}
	if err := validation.ValidatePreorderQuantity(in.Standard, in.LowChol); err != nil {
		return nil, err
	}

	res := &model.Reservation{
		PublicID: uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Standard: in.Standard,
		LowChol:  in.LowChol,
		Location: in.Location,
		Note:     in.Note,
		Status:   model.ReservationStatusWaiting,
	}
	if in.PickupDate != nil {
		d := validation.Midnight(*in.PickupDate)
		res.PickupDate = &d
	}

	if err := s.repo.CreateReservation(ctx, res); err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx)
	s.notify("preorder", res.Name, contact(res.Email, res.Phone), res.Standard, res.LowChol)

	return res, nil
}

// Availability возвращает текущую доступность и прогноз самой ранней даты
// самовывоза для запрошенного количества. Прогноз справочный и ничего не бронирует.
func (s *Service) Availability(ctx context.Context, requestedQty int) (*model.Availability, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	proj := availability.Project(*snap, requestedQty, s.now())

	return &model.Availability{
		StockTotal:      snap.StockTotal(),
		Reserved:        snap.Reserved,
		Available:       proj.Available,
		DailyProduction: snap.DailyProduction,
		RequestedQty:    requestedQty,
		DaysNeeded:      proj.DaysNeeded,
		EarliestPickup:  proj.EarliestDate,
	}, nil
}

func (s *Service) snapshot(ctx context.Context) (*model.CapacitySnapshot, error) {
	if s.snapshots != nil {
		snap, err := s.snapshots.GetSnapshot(ctx)
		if err == nil {
			return snap, nil
		}
	}

	snap, err := s.repo.CapacitySnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		if err := s.snapshots.SetSnapshot(ctx, snap); err != nil {
			s.logger.Warn("cache snapshot error", zap.Error(err))
		}
	}

	return snap, nil
}

// ConfirmReservation превращает предзаказ в заказ.
func (s *Service) ConfirmReservation(ctx context.Context, publicID string) (*model.Order, error) {
	o, err := s.repo.ConfirmReservation(ctx, publicID)
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx)

	return o, nil
}

// CancelReservation отменяет невыполненный предзаказ.
func (s *Service) CancelReservation(ctx context.Context, publicID string) error {
	if err := s.repo.CancelReservation(ctx, publicID); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// AdvanceOrderStatus переводит заказ в следующий статус.
func (s *Service) AdvanceOrderStatus(ctx context.Context, publicID string) (model.OrderStatus, error) {
	return s.repo.AdvanceOrderStatus(ctx, publicID)
}

// CancelOrder отменяет заказ.
func (s *Service) CancelOrder(ctx context.Context, publicID string) error {
	return s.repo.CancelOrder(ctx, publicID)
}

// SetOrderPaid устанавливает признак оплаты заказа.
func (s *Service) SetOrderPaid(ctx context.Context, publicID string, paid bool) error {
	return s.repo.SetOrderPaid(ctx, publicID, paid)
}

// OverrideOrderPrice заменяет цену заказа на введённую вручную.
func (s *Service) OverrideOrderPrice(ctx context.Context, publicID string, price int) error {
	if price < 0 {
		return errors.New("price must not be negative")
	}
	return s.repo.OverrideOrderPrice(ctx, publicID, price)
}

// UpdateOrderQuantities меняет количества заказа и возвращает актуальную цену.
func (s *Service) UpdateOrderQuantities(ctx context.Context, publicID string, standard, lowChol int) (int, error) {
	if err := validation.ValidateOrderQuantity(standard, lowChol); err != nil {
		return 0, err
	}
	price, err := s.repo.UpdateOrderQuantities(ctx, publicID, standard, lowChol)
	if err != nil {
		return 0, err
	}
	s.invalidateSnapshot(ctx)
	return price, nil
}

// GetOrder возвращает заказ по публичному идентификатору.
func (s *Service) GetOrder(ctx context.Context, publicID string) (*model.Order, error) {
	return s.repo.GetOrder(ctx, publicID)
}

// GetReservation возвращает предзаказ по публичному идентификатору.
func (s *Service) GetReservation(ctx context.Context, publicID string) (*model.Reservation, error) {
	return s.repo.GetReservation(ctx, publicID)
}

// ListOrders возвращает все заказы.
func (s *Service) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListOrders(ctx)
}

// ListReservations возвращает все предзаказы.
func (s *Service) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx)
}

// GetStock возвращает текущий остаток.
func (s *Service) GetStock(ctx context.Context) (*model.Stock, error) {
	return s.repo.GetStock(ctx)
}

// UpdateStock устанавливает остаток и сбрасывает кэш доступности.
func (s *Service) UpdateStock(ctx context.Context, standard, lowChol int) error {
	if standard < 0 || lowChol < 0 {
		return validation.ErrNegativeQuantity
	}
	if err := s.repo.UpdateStock(ctx, standard, lowChol); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// GetDailyProduction возвращает дневную скорость производства.
func (s *Service) GetDailyProduction(ctx context.Context) (int, error) {
	return s.repo.GetDailyProduction(ctx)
}

// SetDailyProduction устанавливает дневную скорость производства.
func (s *Service) SetDailyProduction(ctx context.Context, rate int) error {
	if rate < 0 {
		return errors.New("daily production must not be negative")
	}
	if err := s.repo.SetDailyProduction(ctx, rate); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// CreateExpense сохраняет запись о расходах.
func (s *Service) CreateExpense(ctx context.Context, e *model.Expense) error {
	if e.Category == "" {
		return errors.New("expense category is required")
	}
	return s.repo.CreateExpense(ctx, e)
}

// ListExpenses возвращает записи о расходах.
func (s *Service) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return s.repo.ListExpenses(ctx)
}

// DeleteExpense удаляет запись о расходах.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	return s.repo.DeleteExpense(ctx, id)
}

// AddProductionRecord сохраняет дневную запись производства.
func (s *Service) AddProductionRecord(ctx context.Context, rec *model.ProductionRecord) error {
	if rec.Standard < 0 || rec.LowChol < 0 {
		return validation.ErrNegativeQuantity
	}
	if err := s.repo.AddProductionRecord(ctx, rec); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// ListProduction возвращает дневные записи производства.
func (s *Service) ListProduction(ctx context.Context) ([]model.ProductionRecord, error) {
	return s.repo.ListProduction(ctx)
}

// StartSnapshotRefresh периодически обновляет кэшированный снимок доступности.
// Блокируется до отмены контекста; вызывающая сторона запускает его в своей
// горутине и дожидается завершения при остановке.
func (s *Service) StartSnapshotRefresh(ctx context.Context) {
	if s.snapshots == nil {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := s.repo.CapacitySnapshot(ctx)
			if err != nil {
				s.logger.Warn("refresh snapshot error", zap.Error(err))
				continue
			}
			if err := s.snapshots.SetSnapshot(ctx, snap); err != nil {
				s.logger.Warn("cache snapshot error", zap.Error(err))
			}
		}
	}
}

func (s *Service) invalidateSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.InvalidateSnapshot(ctx); err != nil {
		s.logger.Warn("invalidate snapshot error", zap.Error(err))
	}
}

// notify шлёт уведомление оператору в отдельной горутине.
// Сбой отправки логируется и никогда не влияет на результат заявки.
func (s *Service) notify(kind, name, contact string, standard, lowChol int) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.NotifyNewOrder(ctx, kind, name, contact, standard, lowChol); err != nil {
			s.logger.Warn("operator notification error", zap.Error(err), zap.String("kind", kind))
		}
	}()
}

func contact(email, phone string) string {
	if email != "" {
		return email
	}
	return phone
}
