package events

import "errors"

var ErrHubClosed = errors.New("events.errors.hub_closed")
