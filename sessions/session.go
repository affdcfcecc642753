package sessions

import "time"

// Session binds an opaque client token to an optional user.
//
// States:
//  1. Anonymous     - UserID is empty
//  2. Authenticated - UserID references a user
//  3. Expired       - LastRequest + TTL is in the past; the record is deleted when discovered
type Session struct {
	ID          string    `json:"id"`           // Token value carried by the client cookie
	LastRequest time.Time `json:"last_request"` // Start of the sliding expiry window, never moves backwards
	UserID      string    `json:"user_id"`      // Empty while anonymous
}

func (s *Session) Authenticated() bool {
	return s.UserID != ""
}
