package notify

import "errors"

var (
	ErrNoContact          = errors.New("notify.errors.no_contact")
	ErrFailedToRender     = errors.New("notify.errors.failed_to_render")
	ErrFailedToResolve    = errors.New("notify.errors.failed_to_resolve_contact")
	ErrFailedToSendNotice = errors.New("notify.errors.failed_to_send")
)
