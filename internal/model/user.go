package model

import "time"

// User is the authenticated profile. It is persisted across invocations as a
// single record, independent from the transport credential.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
}
