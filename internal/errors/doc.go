// Package errors provides structured API errors and an RFC 7807 problem
// details handler for the HTTP layer. Handlers return APIError values and
// the ErrorHandler converts them into application/problem+json responses.
package errors
