// Package store owns persistence for subscribers and confirmation tokens.
//
// The subscribe path groups its writes in an explicit transaction so that a
// subscriber row and its token row become visible together or not at all.
// The confirm path runs outside any transaction; it is a point lookup
// followed by a single-row update.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

var (
	// ErrUnavailable means no pool connection could be acquired within
	// the configured wait.
	ErrUnavailable = errors.New("store: database unavailable")

	// ErrTokenNotFound means the confirmation token does not exist. It is
	// a normal outcome, not a database failure.
	ErrTokenNotFound = errors.New("store: subscription token not found")
)

// Store provides database operations for subscriptions.
type Store struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// New creates a Store. acquireTimeout bounds how long Begin waits for a pool
// connection before giving up.
func New(db *sql.DB, acquireTimeout time.Duration) *Store {
	if acquireTimeout <= 0 {
		acquireTimeout = 2 * time.Second
	}
	return &Store{db: db, acquireTimeout: acquireTimeout}
}

// Begin opens a transaction, waiting at most the acquire timeout for a pool
// connection. Exceeding the wait fails the request instead of queueing it
// indefinitely behind a saturated pool.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(acquireCtx, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

// Rollback abandons a transaction. Rollback failures are logged rather than
// propagated; the caller already holds the error that triggered the rollback.
func (s *Store) Rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn("transaction rollback failed", "error", err.Error())
	}
}

// Commit makes the transaction's writes visible.
func (s *Store) Commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// InsertSubscriber inserts a pending subscriber inside tx and returns its
// freshly generated id. The row stays invisible to readers until Commit.
func (s *Store) InsertSubscriber(ctx context.Context, tx *sql.Tx, sub domain.NewSubscriber) (uuid.UUID, error) {
	id := uuid.New()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, sub.Email.String(), sub.Name.String(), time.Now().UTC(), domain.SubscriberPending)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting subscriber: %w", err)
	}
	return id, nil
}

// StoreToken inserts a confirmation token bound to a subscriber inside tx.
func (s *Store) StoreToken(ctx context.Context, tx *sql.Tx, subscriberID uuid.UUID, token string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		 VALUES ($1, $2)`,
		token, subscriberID)
	if err != nil {
		return fmt.Errorf("storing subscription token: %w", err)
	}
	return nil
}

// SubscriberIDByToken resolves a confirmation token to its subscriber id.
// Unknown tokens return ErrTokenNotFound.
func (s *Store) SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`,
		token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("looking up subscription token: %w", err)
	}
	return id, nil
}

// MarkConfirmed sets a subscriber's status to confirmed. Confirming an
// already-confirmed subscriber rewrites the same value and is not an error.
func (s *Store) MarkConfirmed(ctx context.Context, subscriberID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1 WHERE id = $2`,
		domain.SubscriberConfirmed, subscriberID)
	if err != nil {
		return fmt.Errorf("marking subscriber confirmed: %w", err)
	}
	return nil
}

// GetSubscriber retrieves a subscriber by id. A missing row returns
// (nil, nil).
func (s *Store) GetSubscriber(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error) {
	sub := &domain.Subscriber{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, subscribed_at, status FROM subscriptions WHERE id = $1`,
		id).Scan(&sub.ID, &sub.Email, &sub.Name, &sub.SubscribedAt, &sub.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching subscriber: %w", err)
	}
	return sub, nil
}
