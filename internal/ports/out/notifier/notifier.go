package notifier

// Notifier raises client-local notifications (e.g. the "new matching trips"
// alert). How the alert is rendered is the presentation shell's concern.
type Notifier interface {
	Notify(title, body string)
}
