// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/milanbouzek/farmshop-system/internal/model"
	"github.com/milanbouzek/farmshop-system/internal/pricing"
	"github.com/milanbouzek/farmshop-system/internal/validation"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrOrderNotFound возвращается, если заказ не найден.
var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrReservationNotFound возвращается, если предзаказ не найден.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrMissingPickupDate возвращается при подтверждении предзаказа без даты самовывоза.
	ErrMissingPickupDate = errors.New("reservation has no pickup date")
	// ErrReservationClosed возвращается при операции над уже подтверждённым или отменённым предзаказом.
	ErrReservationClosed = errors.New("reservation already confirmed or canceled")
	// ErrStatusFinal возвращается при попытке продвинуть заказ из терминального статуса.
	ErrStatusFinal = errors.New("order status is final")
	// ErrExpenseNotFound возвращается, если запись о расходах не найдена.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrProductionExists возвращается при повторной записи производства за один день.
	ErrProductionExists = errors.New("production record for this day already exists")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при временных сбоях: конфликтах сериализации,
// дедлоках и обрывах соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// GetStock возвращает текущий остаток по обоим видам яиц.
func (r *PostgresRepository) GetStock(ctx context.Context) (*model.Stock, error) {
	var s model.Stock
	err := r.pool.QueryRow(ctx,
		`SELECT standard, low_chol, updated_at FROM stock WHERE id = 1`,
	).Scan(&s.Standard, &s.LowChol, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// UpdateStock устанавливает остаток по обоим видам яиц.
func (r *PostgresRepository) UpdateStock(ctx context.Context, standard, lowChol int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE stock SET standard = $1, low_chol = $2, updated_at = now() WHERE id = 1`,
		standard, lowChol,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// GetDailyProduction возвращает настроенную дневную скорость производства.
func (r *PostgresRepository) GetDailyProduction(ctx context.Context) (int, error) {
	var rate int
	err := r.pool.QueryRow(ctx,
		`SELECT daily_production FROM settings WHERE id = 1`,
	).Scan(&rate)
	if err != nil {
		return 0, fmt.Errorf("get daily production: %w", err)
	}
	return rate, nil
}

// SetDailyProduction устанавливает дневную скорость производства.
func (r *PostgresRepository) SetDailyProduction(ctx context.Context, rate int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE settings SET daily_production = $1, updated_at = now() WHERE id = 1`,
		rate,
	)
	if err != nil {
		return fmt.Errorf("set daily production: %w", err)
	}
	return nil
}

// OutstandingReserved возвращает сумму количеств по невыполненным предзаказам.
func (r *PostgresRepository) OutstandingReserved(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(standard_qty + low_chol_qty), 0)
		 FROM reservations
		 WHERE status = $1 AND NOT converted`,
		string(model.ReservationStatusWaiting),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum outstanding reservations: %w", err)
	}
	return total, nil
}

// CapacitySnapshot возвращает исходные данные расчёта доступности одним снимком.
func (r *PostgresRepository) CapacitySnapshot(ctx context.Context) (*model.CapacitySnapshot, error) {
	stock, err := r.GetStock(ctx)
	if err != nil {
		return nil, err
	}

	reserved, err := r.OutstandingReserved(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := r.GetDailyProduction(ctx)
	if err != nil {
		return nil, err
	}

	return &model.CapacitySnapshot{
		StockStandard:   stock.Standard,
		StockLowChol:    stock.LowChol,
		Reserved:        reserved,
		DailyProduction: rate,
	}, nil
}

// CreateOrder сохраняет новый заказ и списывает остаток одной транзакцией.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (public_id, name, email, phone, standard_qty, low_chol_qty,
		                     location, pickup_date, note, price, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		o.PublicID, o.Name, o.Email, o.Phone, o.Standard, o.LowChol,
		string(o.Location), o.PickupDate, o.Note, o.Price, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE stock SET standard = standard - $1, low_chol = low_chol - $2, updated_at = now() WHERE id = 1`,
		o.Standard, o.LowChol,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// CreateReservation сохраняет новый предзаказ, предварительно проверив общий
// лимит броней. Строка настроек блокируется FOR UPDATE, чтобы параллельные
// заявки не могли вместе превысить лимит.
func (r *PostgresRepository) CreateReservation(ctx context.Context, res *model.Reservation) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var dummy int
		err = tx.QueryRow(ctx, `SELECT 1 FROM settings WHERE id = 1 FOR UPDATE`).Scan(&dummy)
		if err != nil {
			return fmt.Errorf("lock settings for update: %w", err)
		}

		var outstanding int
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(standard_qty + low_chol_qty), 0)
			 FROM reservations
			 WHERE status = $1 AND NOT converted`,
			string(model.ReservationStatusWaiting),
		).Scan(&outstanding)
		if err != nil {
			return fmt.Errorf("sum outstanding reservations: %w", err)
		}

		if outstanding+res.Standard+res.LowChol > validation.GlobalCap {
			return &model.CapacityError{Remaining: validation.GlobalCap - outstanding}
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO reservations (public_id, name, email, phone, standard_qty, low_chol_qty,
			                           location, pickup_date, note, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id, created_at`,
			res.PublicID, res.Name, res.Email, res.Phone, res.Standard, res.LowChol,
			string(res.Location), res.PickupDate, res.Note, string(res.Status),
		).Scan(&res.ID, &res.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

const orderColumns = `id, public_id, name, email, phone, standard_qty, low_chol_qty,
	location, pickup_date, note, price, price_manual, paid, status, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o        model.Order
		location string
		status   string
	)
	err := row.Scan(&o.ID, &o.PublicID, &o.Name, &o.Email, &o.Phone, &o.Standard, &o.LowChol,
		&location, &o.PickupDate, &o.Note, &o.Price, &o.PriceManual, &o.Paid, &status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Location = model.PickupLocation(location)
	o.Status = model.OrderStatus(status)
	return &o, nil
}

// GetOrder возвращает заказ по публичному идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, publicID string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE public_id = $1`,
		publicID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListOrders возвращает все заказы, новые первыми.
func (r *PostgresRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

const reservationColumns = `id, public_id, name, email, phone, standard_qty, low_chol_qty,
	location, pickup_date, note, status, converted, created_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		res      model.Reservation
		location string
		status   string
	)
	err := row.Scan(&res.ID, &res.PublicID, &res.Name, &res.Email, &res.Phone, &res.Standard, &res.LowChol,
		&location, &res.PickupDate, &res.Note, &status, &res.Converted, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	res.Location = model.PickupLocation(location)
	res.Status = model.ReservationStatus(status)
	return &res, nil
}

// GetReservation возвращает предзаказ по публичному идентификатору.
func (r *PostgresRepository) GetReservation(ctx context.Context, publicID string) (*model.Reservation, error) {
	res, err := scanReservation(r.pool.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE public_id = $1`,
		publicID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// ListReservations возвращает все предзаказы, новые первыми.
func (r *PostgresRepository) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reservations, nil
}

// ConfirmReservation превращает предзаказ в заказ одной транзакцией:
// вставка заказа, списание остатка и пометка предзаказа выполняются атомарно.
// Подтверждённый предзаказ получает оба терминальных признака —
// status = confirmed и converted = true.
func (r *PostgresRepository) ConfirmReservation(ctx context.Context, publicID string) (*model.Order, error) {
	var order *model.Order

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		res, err := scanReservation(tx.QueryRow(ctx,
			`SELECT `+reservationColumns+` FROM reservations WHERE public_id = $1 FOR UPDATE`,
			publicID,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("lock reservation: %w", err)
		}

		if res.Converted || res.Status != model.ReservationStatusWaiting {
			return ErrReservationClosed
		}
		if res.PickupDate == nil {
			return ErrMissingPickupDate
		}

		o := &model.Order{
			PublicID:   uuid.NewString(),
			Name:       res.Name,
			Email:      res.Email,
			Phone:      res.Phone,
			Standard:   res.Standard,
			LowChol:    res.LowChol,
			Location:   res.Location,
			PickupDate: *res.PickupDate,
			Note:       res.Note,
			Price:      pricing.Total(res.Standard, res.LowChol),
			Status:     model.OrderStatusNew,
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO orders (public_id, name, email, phone, standard_qty, low_chol_qty,
			                     location, pickup_date, note, price, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id, created_at`,
			o.PublicID, o.Name, o.Email, o.Phone, o.Standard, o.LowChol,
			string(o.Location), o.PickupDate, o.Note, o.Price, string(o.Status),
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE stock SET standard = standard - $1, low_chol = low_chol - $2, updated_at = now() WHERE id = 1`,
			o.Standard, o.LowChol,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE reservations SET status = $2, converted = TRUE WHERE id = $1`,
			res.ID, string(model.ReservationStatusConfirmed),
		)
		if err != nil {
			return fmt.Errorf("mark reservation confirmed: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// CancelReservation отменяет невыполненный предзаказ.
func (r *PostgresRepository) CancelReservation(ctx context.Context, publicID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		id        int64
		status    string
		converted bool
	)
	err = tx.QueryRow(ctx,
		`SELECT id, status, converted FROM reservations WHERE public_id = $1 FOR UPDATE`,
		publicID,
	).Scan(&id, &status, &converted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("lock reservation: %w", err)
	}

	if converted || model.ReservationStatus(status) != model.ReservationStatusWaiting {
		return ErrReservationClosed
	}

	_, err = tx.Exec(ctx,
		`UPDATE reservations SET status = $2 WHERE id = $1`,
		id, string(model.ReservationStatusCanceled),
	)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// AdvanceOrderStatus переводит заказ в следующий статус цепочки
// new → processing → done и возвращает новый статус.
func (r *PostgresRepository) AdvanceOrderStatus(ctx context.Context, publicID string) (model.OrderStatus, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		id     int64
		status string
	)
	err = tx.QueryRow(ctx,
		`SELECT id, status FROM orders WHERE public_id = $1 FOR UPDATE`,
		publicID,
	).Scan(&id, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("lock order: %w", err)
	}

	next, ok := model.OrderStatus(status).Next()
	if !ok {
		return "", ErrStatusFinal
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`,
		id, string(next),
	)
	if err != nil {
		return "", fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}

	return next, nil
}

// CancelOrder переводит заказ в статус canceled.
func (r *PostgresRepository) CancelOrder(ctx context.Context, publicID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		id     int64
		status string
	)
	err = tx.QueryRow(ctx,
		`SELECT id, status FROM orders WHERE public_id = $1 FOR UPDATE`,
		publicID,
	).Scan(&id, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}

	if model.OrderStatus(status) == model.OrderStatusCanceled {
		return ErrStatusFinal
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`,
		id, string(model.OrderStatusCanceled),
	)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// SetOrderPaid устанавливает признак оплаты заказа.
func (r *PostgresRepository) SetOrderPaid(ctx context.Context, publicID string, paid bool) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET paid = $2 WHERE public_id = $1`,
		publicID, paid,
	)
	if err != nil {
		return fmt.Errorf("set order paid: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// OverrideOrderPrice заменяет рассчитанную цену заказа на введённую вручную.
// Дальнейшие правки количеств такой заказ не пересчитывают.
func (r *PostgresRepository) OverrideOrderPrice(ctx context.Context, publicID string, price int) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET price = $2, price_manual = TRUE WHERE public_id = $1`,
		publicID, price,
	)
	if err != nil {
		return fmt.Errorf("override order price: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateOrderQuantities меняет количества заказа. Цена пересчитывается,
// только если она не была заменена вручную. Возвращает актуальную цену.
func (r *PostgresRepository) UpdateOrderQuantities(ctx context.Context, publicID string, standard, lowChol int) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		id     int64
		price  int
		manual bool
	)
	err = tx.QueryRow(ctx,
		`SELECT id, price, price_manual FROM orders WHERE public_id = $1 FOR UPDATE`,
		publicID,
	).Scan(&id, &price, &manual)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrOrderNotFound
		}
		return 0, fmt.Errorf("lock order: %w", err)
	}

	if !manual {
		price = pricing.Total(standard, lowChol)
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET standard_qty = $2, low_chol_qty = $3, price = $4 WHERE id = $1`,
		id, standard, lowChol, price,
	)
	if err != nil {
		return 0, fmt.Errorf("update order quantities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return price, nil
}

// CreateExpense сохраняет запись о расходах.
func (r *PostgresRepository) CreateExpense(ctx context.Context, e *model.Expense) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO expenses (spent_on, category, amount, note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.SpentOn, e.Category, e.Amount, e.Note,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// ListExpenses возвращает записи о расходах, свежие первыми.
func (r *PostgresRepository) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, spent_on, category, amount, note, created_at
		 FROM expenses
		 ORDER BY spent_on DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.SpentOn, &e.Category, &e.Amount, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return expenses, nil
}

// DeleteExpense удаляет запись о расходах.
func (r *PostgresRepository) DeleteExpense(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// AddProductionRecord сохраняет дневную запись производства и увеличивает
// остаток на собранное количество одной транзакцией.
func (r *PostgresRepository) AddProductionRecord(ctx context.Context, rec *model.ProductionRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO production_log (produced_on, standard, low_chol, note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		rec.ProducedOn, rec.Standard, rec.LowChol, rec.Note,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrProductionExists, rec.ProducedOn.Format(time.DateOnly))
		}
		return fmt.Errorf("insert production record: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE stock SET standard = standard + $1, low_chol = low_chol + $2, updated_at = now() WHERE id = 1`,
		rec.Standard, rec.LowChol,
	)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// ListProduction возвращает дневные записи производства, свежие первыми.
func (r *PostgresRepository) ListProduction(ctx context.Context) ([]model.ProductionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, produced_on, standard, low_chol, note, created_at
		 FROM production_log
		 ORDER BY produced_on DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select production log: %w", err)
	}
	defer rows.Close()

	var records []model.ProductionRecord
	for rows.Next() {
		var rec model.ProductionRecord
		if err := rows.Scan(&rec.ID, &rec.ProducedOn, &rec.Standard, &rec.LowChol, &rec.Note, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan production record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
