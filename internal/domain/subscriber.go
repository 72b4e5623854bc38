package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriberStatus enumerates the lifecycle states of a subscriber.
// The only legal transition is pending_confirmation -> confirmed.
type SubscriberStatus string

const (
	SubscriberPending   SubscriberStatus = "pending_confirmation"
	SubscriberConfirmed SubscriberStatus = "confirmed"
)

// Subscriber represents a persisted newsletter subscriber.
type Subscriber struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Email        string           `json:"email" db:"email"`
	Name         string           `json:"name" db:"name"`
	SubscribedAt time.Time        `json:"subscribed_at" db:"subscribed_at"`
	Status       SubscriberStatus `json:"status" db:"status"`
}

// NewSubscriber holds a validated subscription request before it has an
// identity. Both fields have already passed value-object validation.
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// ParseNewSubscriber validates raw form input into a NewSubscriber.
// The first failing field wins; callers map the error to a client error.
func ParseNewSubscriber(rawName, rawEmail string) (NewSubscriber, error) {
	name, err := ParseSubscriberName(rawName)
	if err != nil {
		return NewSubscriber{}, err
	}
	email, err := ParseSubscriberEmail(rawEmail)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Name: name, Email: email}, nil
}

// ValidationError reports why a raw input failed value-object validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
