// Package identity defines the username binding attached to an account.
package identity

import "time"

// Identity binds a globally unique username to an account. Verified is set
// at registration time; there is no separate verification step.
type Identity struct {
	Account   string    `json:"account"`
	Username  string    `json:"username"`
	Verified  bool      `json:"verified"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
