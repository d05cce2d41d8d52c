// Package notify provides the simulated notification sender used by the
// order pipeline.
//
// Messages are rendered from a small template catalog. Built-in templates
// cover the default and receipt messages; an operator catalog loaded from a
// YAML file can add to or replace them.
package notify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iliamunaev/order-fulfillment/internal/model"
	"github.com/iliamunaev/order-fulfillment/internal/service/shared"
)

// DefaultTemplate is used when a message names no template, or one the
// catalog does not know.
const DefaultTemplate = "default"

var builtins = map[string]string{
	"default": "Your order {{.OrderID}} has been charged.",
	"receipt": "Receipt for order {{.OrderID}}: authorization {{.AuthCode}}.",
}

// Sender renders notification messages and simulates dispatching them.
//
// The catalog is fixed after wiring: LoadCatalog must not race Send.
type Sender struct {
	latency   time.Duration
	log       *zap.Logger
	templates map[string]*template.Template
}

// NewSender creates a sender with the built-in catalog and the given
// per-dispatch latency. A nil logger disables dispatch logging.
func NewSender(latency time.Duration, log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sender{
		latency:   latency,
		log:       log,
		templates: make(map[string]*template.Template, len(builtins)),
	}
	for name, body := range builtins {
		s.templates[name] = template.Must(template.New(name).Parse(body))
	}
	return s
}

// LoadCatalog merges templates from a YAML file of name-to-body pairs over
// the built-ins. A body that fails to parse rejects the whole catalog, and
// the sender keeps whatever it had before.
func (s *Sender) LoadCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("notify: read catalog %s: %w", path, err)
	}

	var bodies map[string]string
	if err := yaml.Unmarshal(data, &bodies); err != nil {
		return fmt.Errorf("notify: parse catalog %s: %w", path, err)
	}

	parsed := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		t, err := template.New(name).Parse(body)
		if err != nil {
			return fmt.Errorf("notify: template %q: %w", name, err)
		}
		parsed[name] = t
	}
	for name, t := range parsed {
		s.templates[name] = t
	}

	s.log.Info("notification catalog loaded",
		zap.String("path", path),
		zap.Int("templates", len(parsed)),
	)
	return nil
}

// Send renders the message and returns the dispatch's message id.
//
// An unknown template name falls back to the default template. Send respects
// context cancellation while simulating dispatch latency.
func (s *Sender) Send(ctx context.Context, msg model.Message) (string, error) {
	if err := shared.SleepOrDone(ctx, s.latency); err != nil {
		return "", fmt.Errorf("notify %s: %w", msg.Context.OrderID, err)
	}

	if msg.To == "" {
		return "", fmt.Errorf("notify %s: empty recipient", msg.Context.OrderID)
	}

	name := msg.Template
	tmpl, ok := s.templates[name]
	if !ok {
		name = DefaultTemplate
		tmpl = s.templates[name]
	}

	var body strings.Builder
	if err := tmpl.Execute(&body, msg.Context); err != nil {
		return "", fmt.Errorf("notify %s: render %q: %w", msg.Context.OrderID, name, err)
	}

	id := uuid.NewString()
	s.log.Info("notification sent",
		zap.String("message_id", id),
		zap.String("to", msg.To),
		zap.String("template", name),
		zap.String("body", body.String()),
	)
	return id, nil
}
