package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/store"
	"github.com/ignite/newsletter/internal/subscription"
)

// Handlers bundles the HTTP handlers with their dependencies.
type Handlers struct {
	svc *subscription.Service
}

// NewHandlers creates the handler set.
func NewHandlers(svc *subscription.Service) *Handlers {
	return &Handlers{svc: svc}
}

// HealthCheck reports liveness.
//
//	GET /health_check
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w)
}

// Greet returns a plain-text greeting.
//
//	GET /
//	GET /{name}
func (h *Handlers) Greet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		name = "World"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Hello, %s!", name)
}

// Subscribe accepts a form-encoded subscription request.
//
//	POST /subscriptions
//	name=<display name>&email=<address>
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "malformed form data")
		return
	}

	name := r.PostForm.Get("name")
	email := r.PostForm.Get("email")

	err := h.svc.Subscribe(r.Context(), name, email)
	if err == nil {
		httputil.OK(w)
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		logger.Info("subscription rejected",
			"field", verr.Field,
			"reason", verr.Reason,
			"email", email)
		httputil.BadRequest(w, verr.Error())
		return
	}

	logger.Error("subscription failed", "error", err.Error(), "email", email)
	httputil.Error(w, http.StatusInternalServerError, "internal server error")
}

// Confirm activates a pending subscription from its emailed token.
//
//	GET /subscriptions/confirm?subscription_token=<token>
func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	rawToken := r.URL.Query().Get("subscription_token")

	err := h.svc.Confirm(r.Context(), rawToken)
	if err == nil {
		httputil.OK(w)
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		httputil.BadRequest(w, verr.Error())
		return
	}

	if errors.Is(err, store.ErrTokenNotFound) {
		httputil.Unauthorized(w, "unknown subscription token")
		return
	}

	httputil.InternalError(w, err)
}
