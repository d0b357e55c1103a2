package connectivity

import log "github.com/sirupsen/logrus"

// DefaultNoConnectionMessage is shown by RunIfConnected and the Warn helpers.
const DefaultNoConnectionMessage = "No internet connection!!!"

// Notifier surfaces a short, transient message to the user.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// LogNotifier writes the message as a logrus warning.
type LogNotifier struct {
	Logger *log.Entry
}

func (n LogNotifier) Notify(message string) {
	logger := n.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	logger.Warn(message)
}
