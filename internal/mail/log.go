package mail

import (
	"context"
	"log/slog"
)

// LogSender renders messages and writes them to the log instead of
// delivering them. Used in local development where no SMTP server runs.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that logs rendered messages.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	body, err := render(msg)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "mail rendered",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("template", msg.Template),
		slog.Int("body_bytes", len(body)),
	)

	return nil
}
