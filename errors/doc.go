// Package errors provides the structured error type shared by the tpi
// client packages. An AppError carries a machine-readable code, a message
// suitable for printing to the user, the HTTP status it corresponds to (if
// any) and an optional cause.
package errors
