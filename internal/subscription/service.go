// Package subscription orchestrates the subscribe and confirm use cases.
//
// Subscribe runs as one transaction: insert the pending subscriber, store its
// confirmation token, send the confirmation email, then commit. The email
// round-trip deliberately happens before commit, while the transaction is
// still open: an uncommitted, uncommunicated subscription is
// indistinguishable from one that never happened, whereas a committed
// subscriber whose email never went out can never confirm. The price is the
// narrow window where the email is sent and the commit then fails; the email
// client's timeout is kept tight so the transaction's connection is not held
// long.
package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/email"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/store"
	"github.com/ignite/newsletter/internal/token"
)

// Service composes validation, persistence, token issuance, and email
// delivery into the subscription workflow.
type Service struct {
	store     *store.Store
	emails    *email.Client
	templates *email.Templates
	tokens    *token.Generator
	baseURL   string
}

// New creates a Service. baseURL is the public URL confirmation links are
// built against.
func New(st *store.Store, client *email.Client, templates *email.Templates, tokens *token.Generator, baseURL string) *Service {
	return &Service{
		store:     st,
		emails:    client,
		templates: templates,
		tokens:    tokens,
		baseURL:   baseURL,
	}
}

// Subscribe handles a new subscription request from raw form input.
//
// On success exactly one pending subscriber row and one token row are
// committed, and exactly one confirmation email has been sent. On any
// failure after the transaction opens, the transaction is rolled back and no
// partial state is visible to readers.
func (s *Service) Subscribe(ctx context.Context, rawName, rawEmail string) error {
	sub, err := domain.ParseNewSubscriber(rawName, rawEmail)
	if err != nil {
		return err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open subscription transaction: %w", err)
	}

	subscriberID, err := s.store.InsertSubscriber(ctx, tx, sub)
	if err != nil {
		s.store.Rollback(tx)
		return fmt.Errorf("failed to insert new subscriber: %w", err)
	}

	confirmationToken := s.tokens.Generate()
	if err := s.store.StoreToken(ctx, tx, subscriberID, confirmationToken); err != nil {
		s.store.Rollback(tx)
		return fmt.Errorf("failed to store confirmation token: %w", err)
	}

	if err := s.sendConfirmationEmail(ctx, sub.Email, confirmationToken); err != nil {
		s.store.Rollback(tx)
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	// The email is already out; a commit failure here leaves the
	// subscriber holding a link that will 401. That asymmetry is accepted
	// over its inverse (a committed subscriber with no link at all).
	if err := s.store.Commit(tx); err != nil {
		return fmt.Errorf("failed to commit subscription: %w", err)
	}

	logger.Info("new subscriber pending confirmation",
		"subscriber_id", subscriberID.String(),
		"subscriber_email", sub.Email.String())
	return nil
}

func (s *Service) sendConfirmationEmail(ctx context.Context, to domain.SubscriberEmail, confirmationToken string) error {
	msg, err := s.templates.RenderConfirmation(s.baseURL, confirmationToken)
	if err != nil {
		return fmt.Errorf("rendering confirmation email: %w", err)
	}
	return s.emails.Send(ctx, to, msg.Subject, msg.HTMLBody, msg.TextBody)
}

// Confirm flips a pending subscriber to confirmed given their confirmation
// token. Unknown tokens surface store.ErrTokenNotFound. Confirming twice is
// a no-op, not an error.
func (s *Service) Confirm(ctx context.Context, rawToken string) error {
	if !token.Valid(rawToken) {
		return &domain.ValidationError{Field: "subscription_token", Reason: "malformed token"}
	}

	subscriberID, err := s.store.SubscriberIDByToken(ctx, rawToken)
	if err != nil {
		if err == store.ErrTokenNotFound {
			return err
		}
		return fmt.Errorf("failed to resolve confirmation token: %w", err)
	}

	if err := s.store.MarkConfirmed(ctx, subscriberID); err != nil {
		return fmt.Errorf("failed to confirm subscriber: %w", err)
	}

	logger.Info("subscriber confirmed", "subscriber_id", subscriberID.String())
	return nil
}

// SubscriberByID exposes a read-back of a subscriber. Used by tests and
// operational tooling.
func (s *Service) SubscriberByID(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error) {
	return s.store.GetSubscriber(ctx, id)
}
