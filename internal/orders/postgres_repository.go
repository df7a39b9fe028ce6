package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// Submit stores the order and its order.placed outbox event in one
// transaction.
func (r *Repository) Submit(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	order, err := newOrder(req, r.now())
	if err != nil {
		return nil, err
	}

	cols, err := encodeOrder(order)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(placedEvent(order))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO orders (id, visitor_id, user_id, kind, status, contact, shipping, special_requirements,
	                              payment, items, appointment, total_amount, currency, created_at)
	          VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = tx.ExecContext(ctx, query,
		order.ID,
		order.VisitorID,
		order.UserID,
		order.Kind,
		order.Status,
		cols.contact,
		cols.shipping,
		order.SpecialRequirements,
		cols.payment,
		cols.items,
		cols.appointment,
		order.TotalAmount,
		order.Currency,
		order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	outbox := `INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
	           VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, outbox, order.VisitorID, EventOrderPlaced, payload, order.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

const selectOrder = `SELECT id, visitor_id, COALESCE(user_id, ''), kind, status, contact, shipping, special_requirements,
	                        payment, items, appointment, total_amount, currency, created_at
	                 FROM orders`

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events
	          WHERE processed_at IS NULL
	          ORDER BY id
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark outbox event %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type orderColumns struct {
	contact     []byte
	shipping    any
	payment     []byte
	items       []byte
	appointment any
}

func encodeOrder(o *domain.Order) (*orderColumns, error) {
	var cols orderColumns
	var err error
	if cols.contact, err = json.Marshal(o.Contact); err != nil {
		return nil, fmt.Errorf("failed to marshal contact: %w", err)
	}
	if cols.payment, err = json.Marshal(o.Payment); err != nil {
		return nil, fmt.Errorf("failed to marshal payment: %w", err)
	}
	if cols.items, err = json.Marshal(o.Items); err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}
	if o.Shipping != nil {
		b, err := json.Marshal(o.Shipping)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal shipping: %w", err)
		}
		cols.shipping = b
	}
	if o.Appointment != nil {
		b, err := json.Marshal(o.Appointment)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal appointment: %w", err)
		}
		cols.appointment = b
	}
	return &cols, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var o domain.Order
	var contact, shipping, payment, items, appointment []byte
	err := row.Scan(
		&o.ID,
		&o.VisitorID,
		&o.UserID,
		&o.Kind,
		&o.Status,
		&contact,
		&shipping,
		&o.SpecialRequirements,
		&payment,
		&items,
		&appointment,
		&o.TotalAmount,
		&o.Currency,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(contact, &o.Contact); err != nil {
		return nil, fmt.Errorf("unmarshal contact: %w", err)
	}
	if err := json.Unmarshal(payment, &o.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if shipping != nil {
		o.Shipping = &domain.BillingInfo{}
		if err := json.Unmarshal(shipping, o.Shipping); err != nil {
			return nil, fmt.Errorf("unmarshal shipping: %w", err)
		}
	}
	if appointment != nil {
		o.Appointment = &domain.AppointmentDetails{}
		if err := json.Unmarshal(appointment, o.Appointment); err != nil {
			return nil, fmt.Errorf("unmarshal appointment: %w", err)
		}
	}
	return &o, nil
}
