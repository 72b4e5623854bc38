package email

import (
	"fmt"

	"github.com/osteele/liquid"
)

// ConfirmationSubject is the subject line of every confirmation email.
const ConfirmationSubject = "WELCOME"

const confirmationHTMLTemplate = `Welcome to our newsletter!<br />` +
	`Click <a href="{{ confirmation_link }}">here</a> to confirm your subscription.`

const confirmationTextTemplate = `Welcome to our newsletter!
Visit {{ confirmation_link }} to confirm your subscription.`

// ConfirmationEmail holds both rendered bodies of a confirmation email. The
// embedded confirmation URLs are byte-identical across the two bodies.
type ConfirmationEmail struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Templates renders confirmation email bodies. Templates are parsed once at
// construction time; rendering is cheap and concurrency-safe.
type Templates struct {
	html *liquid.Template
	text *liquid.Template
}

// NewTemplates parses the built-in confirmation templates.
func NewTemplates() (*Templates, error) {
	engine := liquid.NewEngine()

	html, err := engine.ParseString(confirmationHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing html template: %w", err)
	}
	text, err := engine.ParseString(confirmationTextTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing text template: %w", err)
	}
	return &Templates{html: html, text: text}, nil
}

// ConfirmationLink builds the URL a subscriber visits to confirm.
func ConfirmationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", baseURL, token)
}

// RenderConfirmation renders both bodies around the confirmation link for the
// given token.
func (t *Templates) RenderConfirmation(baseURL, token string) (ConfirmationEmail, error) {
	bindings := map[string]any{
		"confirmation_link": ConfirmationLink(baseURL, token),
	}

	html, err := t.html.RenderString(bindings)
	if err != nil {
		return ConfirmationEmail{}, fmt.Errorf("rendering html body: %w", err)
	}
	text, err := t.text.RenderString(bindings)
	if err != nil {
		return ConfirmationEmail{}, fmt.Errorf("rendering text body: %w", err)
	}

	return ConfirmationEmail{
		Subject:  ConfirmationSubject,
		HTMLBody: html,
		TextBody: text,
	}, nil
}
