package lognotifier

import "github.com/rideshare-app/rideshare-client/internal/platform/logger"

// Notifier raises client-local notifications by logging them; a real shell would
// hand them to the platform notification tray.
type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	return &Notifier{log: log}
}

func (n *Notifier) Notify(title, body string) {
	n.log.Info("notification", logger.String("title", title), logger.String("body", body))
}
