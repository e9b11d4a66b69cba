// Package notify turns quota threshold events into billing emails.
//
// A QuotaNotifier subscribes to an events.Hub of events.QuotaThreshold,
// resolves the tenant's billing contact and sends an html/template rendered
// message through an email.Sender. Run it in its own goroutine; it stops
// when its context is cancelled or the hub is closed.
package notify
