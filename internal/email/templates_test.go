package email

import (
	"regexp"
	"strings"
	"testing"
)

func TestRenderConfirmation(t *testing.T) {
	tmpl, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates() error: %v", err)
	}

	msg, err := tmpl.RenderConfirmation("https://newsletter.example.com", "abcdefghijklmnopqrstuvwxy")
	if err != nil {
		t.Fatalf("RenderConfirmation() error: %v", err)
	}

	wantLink := "https://newsletter.example.com/subscriptions/confirm?subscription_token=abcdefghijklmnopqrstuvwxy"
	if !strings.Contains(msg.HTMLBody, wantLink) {
		t.Errorf("html body missing confirmation link:\n%s", msg.HTMLBody)
	}
	if !strings.Contains(msg.TextBody, wantLink) {
		t.Errorf("text body missing confirmation link:\n%s", msg.TextBody)
	}
	if msg.Subject != "WELCOME" {
		t.Errorf("subject = %q, want WELCOME", msg.Subject)
	}
}

// The link a subscriber clicks must be the same no matter which body their
// mail client renders.
func TestRenderConfirmationLinksAreIdentical(t *testing.T) {
	tmpl, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates() error: %v", err)
	}

	msg, err := tmpl.RenderConfirmation("http://localhost:8080", "A1b2C3d4E5f6G7h8I9j0K1l2M")
	if err != nil {
		t.Fatalf("RenderConfirmation() error: %v", err)
	}

	linkRe := regexp.MustCompile(`https?://[^\s"<]+`)
	htmlLinks := linkRe.FindAllString(msg.HTMLBody, -1)
	textLinks := linkRe.FindAllString(msg.TextBody, -1)

	if len(htmlLinks) != 1 || len(textLinks) != 1 {
		t.Fatalf("expected exactly one link per body, got html=%v text=%v", htmlLinks, textLinks)
	}
	if htmlLinks[0] != textLinks[0] {
		t.Errorf("links differ:\n html: %s\n text: %s", htmlLinks[0], textLinks[0])
	}
}
