package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Miandari/dailygrit/pkg/models"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
	tx   pgx.Tx
}

// NewPostgresStore creates a PostgreSQL-backed store over a pgx pool
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Challenges() ChallengeRepository {
	return &challengeRepository{db: s.db}
}

func (s *pgStore) Participants() ParticipantRepository {
	return &participantRepository{db: s.db, inTx: s.tx != nil}
}

func (s *pgStore) Entries() EntryRepository {
	return &entryRepository{db: s.db}
}

func (s *pgStore) JoinRequests() JoinRequestRepository {
	return &joinRequestRepository{db: s.db}
}

// WithTransaction executes fn within a database transaction
func (s *pgStore) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapDBError(err, "begin_transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&pgStore{pool: s.pool, db: tx, tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapDBError(err, "commit_transaction")
	}
	return nil
}

// Ping checks the pool can reach the database
func (s *pgStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return mapDBError(err, "ping")
	}
	return nil
}

// Close releases the pool
func (s *pgStore) Close() {
	if s.tx == nil {
		s.pool.Close()
	}
}

// mapDBError maps database errors to the application taxonomy
func mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", operation, models.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: referenced row missing: %w", operation, models.ErrNotFound)
		case "40001": // serialization_failure
			return models.PersistenceError(operation, fmt.Errorf("concurrent update conflict - please retry: %w", err))
		}
	}

	return models.PersistenceError(operation, err)
}
