// Package events is the in-process publish/subscribe hub used to fan out
// usage and quota notifications.
//
// A Hub is created once at startup, handed to publishers and subscribers
// explicitly and closed at shutdown. Delivery never blocks the publisher:
// when a subscriber's buffer is full the message is dropped for that
// subscriber only.
//
//	hub := events.NewHub[events.QuotaThreshold](events.WithBufferSize(64))
//	defer hub.Close()
//
//	sub, err := hub.Subscribe(ctx, events.AllTopics)
//	if err != nil {
//		return err
//	}
//	for ev := range sub.C() {
//		// ...
//	}
package events
