package mailer

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Mailer delivers a notification email. Template formatting lives with the
// mail provider; only the kind and data fields are passed through.
type Mailer interface {
	Send(ctx context.Context, kind, recipient string, data map[string]string) error
}

// LogMailer records dispatches in the log instead of sending them.
// Used until a mail provider is wired in.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, kind, recipient string, data map[string]string) error {
	if recipient == "" {
		return fmt.Errorf("mail %s: empty recipient", kind)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m.logger.Info("Email dispatched",
		zap.String("kind", kind),
		zap.String("recipient", recipient),
		zap.Strings("fields", keys))
	return nil
}
