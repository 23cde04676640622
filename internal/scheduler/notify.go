package scheduler

import "github.com/gen2brain/beeep"

// Notifier delivers a short message to the user.
type Notifier func(title, message string) error

// DesktopNotifier sends a native desktop notification.
func DesktopNotifier(title, message string) error {
	return beeep.Notify(title, message, "")
}
