package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dobFormat = "2006-01-02"

// Repository persists member records.
type Repository interface {
	Create(ctx context.Context, name, email string) (int, error)
	FindByID(ctx context.Context, id int) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, id int, patch Patch) (Record, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed member repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new member and returns its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, name, email string) (int, error) {
	var id int
	err := r.db.QueryRow(ctx,
		`INSERT INTO members (user_name, email) VALUES ($1, $2) RETURNING id`,
		name, email).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert member: %w", err)
	}
	return id, nil
}

// FindByID fetches a single member by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id int) (Record, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_name, email, dob FROM members WHERE id = $1`, id)
	return scanRecord(row)
}

// List returns all members ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_name, email, dob FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Update applies a partial update and returns the resulting row.
func (r *PostgresRepository) Update(ctx context.Context, id int, patch Patch) (Record, error) {
	var dob *time.Time
	if patch.DoB != nil {
		parsed, err := time.Parse(dobFormat, *patch.DoB)
		if err != nil {
			return Record{}, fmt.Errorf("parse DoB %q: %w", *patch.DoB, err)
		}
		dob = &parsed
	}

	row := r.db.QueryRow(ctx,
		`UPDATE members
            SET user_name = COALESCE($1, user_name),
                email     = COALESCE($2, email),
                dob       = COALESCE($3, dob)
          WHERE id = $4
      RETURNING id, user_name, email, dob`,
		patch.UserName, patch.EmailID, dob, id)
	return scanRecord(row)
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec Record
		dob *time.Time
	)
	if err := row.Scan(&rec.ID, &rec.UserName, &rec.EmailID, &dob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("scan member: %w", err)
	}
	if dob != nil {
		rec.DoB = dob.Format(dobFormat)
	}
	return rec, nil
}
