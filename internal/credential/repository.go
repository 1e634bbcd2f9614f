package credential

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrPhoneTaken indicates the phone number is already registered.
	ErrPhoneTaken = errors.New("phone number already registered")

	// ErrNotFound indicates no credential exists for the phone number.
	ErrNotFound = errors.New("credential not found")
)

// Repository persists user credentials. Insert and lookup are the only
// operations; credentials are never updated or deleted.
type Repository interface {
	Insert(ctx context.Context, cred Credential) error
	FindByPhone(ctx context.Context, phone string) (Credential, error)
}

// PostgresRepository implements Repository using PostgreSQL.
//
// Schema: users (id uuid PK, phone text UNIQUE, password_hash bytea,
// wallet_address text, wrapped_private_key text, salt text, created_at
// timestamptz). The salt column is legacy and always written empty; the
// wrapper embeds its own salt in the ciphertext.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes a new credential row. The unique constraint on phone is
// the real guard against concurrent registrations; a violation surfaces
// as ErrPhoneTaken regardless of any earlier duplicate pre-check.
func (r *PostgresRepository) Insert(ctx context.Context, cred Credential) error {
	id, err := uuid.Parse(cred.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, phone, password_hash, wallet_address, wrapped_private_key, salt, created_at)
        VALUES ($1, $2, $3, $4, $5, '', $6)`,
		id, cred.Phone, cred.PasswordHash, cred.WalletAddress, cred.WrappedKey, cred.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPhoneTaken
		}
		return err
	}
	return nil
}

// FindByPhone fetches the credential keyed by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (Credential, error) {
	row := r.db.QueryRow(ctx, `SELECT id, phone, password_hash, wallet_address, wrapped_private_key, created_at
        FROM users WHERE phone = $1`, phone)

	var (
		id        uuid.UUID
		createdAt time.Time
		cred      Credential
	)
	if err := row.Scan(&id, &cred.Phone, &cred.PasswordHash, &cred.WalletAddress, &cred.WrappedKey, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, err
	}
	cred.ID = id.String()
	cred.CreatedAt = createdAt.UTC()
	return cred, nil
}
