package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter/internal/domain"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, 2*time.Second), mock
}

func mustNewSubscriber(t *testing.T) domain.NewSubscriber {
	t.Helper()
	sub, err := domain.ParseNewSubscriber("Jane Doe", "jane.doe@example.com")
	require.NoError(t, err)
	return sub
}

func TestInsertSubscriber(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subscriptions").
		WithArgs(sqlmock.AnyArg(), "jane.doe@example.com", "Jane Doe", sqlmock.AnyArg(), domain.SubscriberPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := st.Begin(ctx)
	require.NoError(t, err)

	id, err := st.InsertSubscriber(ctx, tx, mustNewSubscriber(t))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.NoError(t, st.Commit(tx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreTokenAndRollback(t *testing.T) {
	st, mock := newTestStore(t)
	subscriberID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WithArgs("abcdefghijklmnopqrstuvwxy", subscriberID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := st.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, st.StoreToken(ctx, tx, subscriberID, "abcdefghijklmnopqrstuvwxy"))
	st.Rollback(tx)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreTokenError(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := st.Begin(ctx)
	require.NoError(t, err)

	err = st.StoreToken(ctx, tx, uuid.New(), "abcdefghijklmnopqrstuvwxy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing subscription token")
	st.Rollback(tx)
}

func TestSubscriberIDByToken(t *testing.T) {
	st, mock := newTestStore(t)
	subscriberID := uuid.New()

	mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
		WithArgs("abcdefghijklmnopqrstuvwxy").
		WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}).AddRow(subscriberID.String()))

	got, err := st.SubscriberIDByToken(context.Background(), "abcdefghijklmnopqrstuvwxy")
	require.NoError(t, err)
	assert.Equal(t, subscriberID, got)
}

func TestSubscriberIDByTokenNotFound(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
		WithArgs("abcdefghijklmnopqrstuvwxy").
		WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}))

	_, err := st.SubscriberIDByToken(context.Background(), "abcdefghijklmnopqrstuvwxy")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestSubscriberIDByTokenQueryError(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
		WillReturnError(errors.New("connection refused"))

	_, err := st.SubscriberIDByToken(context.Background(), "abcdefghijklmnopqrstuvwxy")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenNotFound)
}

func TestMarkConfirmed(t *testing.T) {
	st, mock := newTestStore(t)
	subscriberID := uuid.New()

	mock.ExpectExec("UPDATE subscriptions SET status").
		WithArgs(domain.SubscriberConfirmed, subscriberID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.MarkConfirmed(context.Background(), subscriberID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSubscriber(t *testing.T) {
	st, mock := newTestStore(t)
	subscriberID := uuid.New()
	subscribedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, email, name, subscribed_at, status FROM subscriptions").
		WithArgs(subscriberID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "subscribed_at", "status"}).
			AddRow(subscriberID.String(), "jane.doe@example.com", "Jane Doe", subscribedAt, "pending_confirmation"))

	sub, err := st.GetSubscriber(context.Background(), subscriberID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, subscriberID, sub.ID)
	assert.Equal(t, "jane.doe@example.com", sub.Email)
	assert.Equal(t, "Jane Doe", sub.Name)
	assert.Equal(t, domain.SubscriberPending, sub.Status)
}

func TestGetSubscriberMissing(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectQuery("SELECT id, email, name, subscribed_at, status FROM subscriptions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "subscribed_at", "status"}))

	sub, err := st.GetSubscriber(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestBeginUnavailableWhenPoolSaturated(t *testing.T) {
	st, mock := newTestStore(t)

	mock.ExpectBegin().WillReturnError(context.DeadlineExceeded)

	_, err := st.Begin(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}
