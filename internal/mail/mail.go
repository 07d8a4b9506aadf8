// Package mail renders and delivers transactional email.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Message describes a single email to deliver. Template names a file under
// templates/ and Data is passed to it during rendering.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Sender defines the interface for delivering rendered email messages.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// render executes the named template with the message data and returns the
// resulting HTML body.
func render(msg *Message) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+msg.Template)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", msg.Template, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg.Data); err != nil {
		return "", fmt.Errorf("render template %s: %w", msg.Template, err)
	}

	return buf.String(), nil
}
