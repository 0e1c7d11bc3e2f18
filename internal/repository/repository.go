package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/glowbook/auth-service/pkg/database"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same repository code serves both plain and transactional calls.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories holds all repository interfaces
type Repositories struct {
	User          UserRepository
	Token         TokenRepository
	OTP           OTPRepository
	OAuthProvider OAuthProviderRepository
	Salon         SalonRepository
	Profile       ProfileRepository

	db *database.Postgres
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db.DB),
		Token:         NewTokenRepository(db.DB),
		OTP:           NewOTPRepository(db.DB),
		OAuthProvider: NewOAuthProviderRepository(db.DB),
		Salon:         NewSalonRepository(db.DB),
		Profile:       NewProfileRepository(db.DB),
		db:            db,
	}
}

// stateStore is implemented by in-memory repository implementations that can
// capture and restore their full state. It stands in for SQL rollback when
// no database handle is attached.
type stateStore interface {
	Snapshot() any
	Restore(snapshot any)
}

// WithTx runs fn against transaction-bound repositories. It commits when fn
// returns nil and rolls back otherwise, so multi-row registration either
// fully completes or leaves no rows behind.
func (r *Repositories) WithTx(ctx context.Context, fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		return r.withStateRollback(fn)
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return err
	}

	txRepos := &Repositories{
		User:          NewUserRepository(tx),
		Token:         NewTokenRepository(tx),
		OTP:           NewOTPRepository(tx),
		OAuthProvider: NewOAuthProviderRepository(tx),
		Salon:         NewSalonRepository(tx),
		Profile:       NewProfileRepository(tx),
	}

	if err := fn(txRepos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// withStateRollback snapshots every snapshot-capable store before running fn
// and restores all of them when fn fails, so a failed callback leaves no
// partial writes behind even without a database.
func (r *Repositories) withStateRollback(fn func(txRepos *Repositories) error) error {
	type saved struct {
		store stateStore
		state any
	}

	var saves []saved
	for _, repo := range []any{r.User, r.Token, r.OTP, r.OAuthProvider, r.Salon, r.Profile} {
		if s, ok := repo.(stateStore); ok {
			saves = append(saves, saved{store: s, state: s.Snapshot()})
		}
	}

	if err := fn(r); err != nil {
		for _, s := range saves {
			s.store.Restore(s.state)
		}
		return err
	}

	return nil
}
