// Package email sends transactional mail such as quota warnings.
//
// Two providers are available and chosen with EMAIL_PROVIDER: "console"
// logs the message through slog, "postmark" delivers it with
// github.com/mrz1836/postmark.
package email
