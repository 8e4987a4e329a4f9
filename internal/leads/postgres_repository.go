package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the pool surface the repository needs. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q querier) *PostgresRepository {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{pool: q}
}

const leadColumns = `phone, name, stage, age, state, health_flag, health_details,
	budget, contact_time, slot_options, slot, ticket, status, created_at, updated_at`

// FindOrCreate returns the lead for phone, inserting a fresh row on first contact.
func (r *PostgresRepository) FindOrCreate(ctx context.Context, phone string) (*Lead, error) {
	if phone == "" {
		return nil, ErrMissingPhone
	}

	insert := `
		INSERT INTO leads (phone, stage, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insert, phone, string(StageGreeting), string(StatusActive)); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return r.GetByPhone(ctx, phone)
}

// GetByPhone fetches a lead by phone number.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE phone = $1`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// Save persists all mutated fields of the lead in one statement.
func (r *PostgresRepository) Save(ctx context.Context, lead *Lead) error {
	if lead == nil || lead.Phone == "" {
		return ErrMissingPhone
	}

	query := `
		UPDATE leads
		SET name = $2, stage = $3, age = $4, state = $5, health_flag = $6,
		    health_details = $7, budget = $8, contact_time = $9,
		    slot_options = $10, slot = $11, ticket = $12, status = $13,
		    updated_at = now()
		WHERE phone = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		lead.Phone,
		nullable(lead.Name),
		string(lead.Stage),
		nullableInt(lead.Age),
		nullable(lead.State),
		nullable(lead.HealthFlag),
		nullable(lead.HealthDetails),
		nullable(lead.Budget),
		nullable(lead.ContactTime),
		nullable(EncodeSlotOptions(lead.SlotOptions)),
		nullable(lead.Slot),
		nullable(lead.Ticket),
		string(lead.Status),
	)
	if err != nil {
		return fmt.Errorf("leads: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// List returns all leads ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at, phone`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*Lead, error) {
	var (
		lead          Lead
		name          sql.NullString
		age           sql.NullInt32
		state         sql.NullString
		healthFlag    sql.NullString
		healthDetails sql.NullString
		budget        sql.NullString
		contactTime   sql.NullString
		slotOptions   sql.NullString
		slot          sql.NullString
		ticket        sql.NullString
		stage         string
		status        string
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&lead.Phone,
		&name,
		&stage,
		&age,
		&state,
		&healthFlag,
		&healthDetails,
		&budget,
		&contactTime,
		&slotOptions,
		&slot,
		&ticket,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	lead.Name = name.String
	lead.Stage = Stage(stage)
	lead.Age = int(age.Int32)
	lead.State = state.String
	lead.HealthFlag = healthFlag.String
	lead.HealthDetails = healthDetails.String
	lead.Budget = budget.String
	lead.ContactTime = contactTime.String
	lead.SlotOptions = DecodeSlotOptions(slotOptions.String)
	lead.Slot = slot.String
	lead.Ticket = ticket.String
	lead.Status = Status(status)
	lead.CreatedAt = createdAt
	lead.UpdatedAt = updatedAt
	return &lead, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
