package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bookline/console/pkg/eventbus"
)

// Notifier is the toast boundary: fire-and-forget user-facing messages.
type Notifier interface {
	Notify(kind string, message string)
}

const (
	NotifySuccess = "success"
	NotifyError   = "error"
)

// LogNotifier is the default sink when no UI toast collaborator is wired.
type LogNotifier struct {
	Log *logrus.Logger
}

func (n *LogNotifier) Notify(kind string, message string) {
	if n.Log == nil {
		return
	}
	entry := n.Log.WithField("notification", kind)
	if kind == NotifyError {
		entry.Error(message)
		return
	}
	entry.Info(message)
}

// SubscribeNotifications converts save events into notifications. Failure
// messages name the rejected entities when their names are known, so the
// user sees "failed to assign X" rather than a generic error.
func SubscribeNotifications(bus eventbus.EventBus, notifier Notifier) {
	bus.Subscribe(func(e AssignmentsSavedEvent) {
		notifier.Notify(NotifySuccess, fmt.Sprintf("assignments saved for %s", e.Owner))
	})
	bus.Subscribe(func(e AssignmentsSaveFailedEvent) {
		if len(e.FailedNames) > 0 {
			notifier.Notify(NotifyError, fmt.Sprintf("failed to assign %s", strings.Join(e.FailedNames, ", ")))
			return
		}
		notifier.Notify(NotifyError, fmt.Sprintf("failed to save assignments for %s (%s)", e.Owner, e.Failure))
	})
}
