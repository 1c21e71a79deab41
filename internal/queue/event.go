// Package queue defines message payloads exchanged over the message broker.
package queue

// ConfirmationEmailEvent is published on every signup (including an
// idempotent resend). The downstream consumer is responsible for the
// actual delivery; the API only needs the publish to go out.
type ConfirmationEmailEvent struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Code     string `json:"code"`
	IssuedAt string `json:"issued_at"`
}
