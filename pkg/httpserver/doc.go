// Package httpserver runs the service's HTTP listener with graceful
// shutdown and provides a JSON health endpoint over dependency checks.
package httpserver
