package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Login is a credential row: who may authenticate and with what role.
type Login struct {
	MemberID     int
	PasswordHash string
	Role         string
}

// ErrLoginNotFound is returned when no credential row exists for a member.
var ErrLoginNotFound = errors.New("login not found")

// Repository persists login credentials.
type Repository interface {
	Create(ctx context.Context, login Login) error
	FindByMemberID(ctx context.Context, memberID int) (Login, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a credential row for a member.
func (r *PostgresRepository) Create(ctx context.Context, login Login) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO logins (member_id, password, role) VALUES ($1, $2, $3)`,
		login.MemberID, login.PasswordHash, login.Role)
	if err != nil {
		return fmt.Errorf("insert login: %w", err)
	}
	return nil
}

// FindByMemberID fetches the credential row for a member.
func (r *PostgresRepository) FindByMemberID(ctx context.Context, memberID int) (Login, error) {
	row := r.db.QueryRow(ctx,
		`SELECT member_id, password, role FROM logins WHERE member_id = $1`, memberID)
	var login Login
	if err := row.Scan(&login.MemberID, &login.PasswordHash, &login.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Login{}, ErrLoginNotFound
		}
		return Login{}, fmt.Errorf("scan login: %w", err)
	}
	return login, nil
}
