package httpserver

import "errors"

var (
	ErrStart    = errors.New("httpserver.errors.failed_to_start")
	ErrShutdown = errors.New("httpserver.errors.failed_to_shutdown")
)
