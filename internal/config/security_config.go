package config

import "time"

type SecurityConfig interface {
	GetSessionTTL() time.Duration
	GetSessionCookieName() string
	GetAllowAccountCreation() bool
}

type Security struct {
	src source
}

var _ SecurityConfig = Security{}

// GetSessionTTL is the sliding expiry window measured from a session's last request.
func (s Security) GetSessionTTL() time.Duration {
	return time.Duration(s.src.getInt("SESSION_TTL", 30*24*60*60)) * time.Second
}

func (s Security) GetSessionCookieName() string {
	return s.src.get("SESSION_COOKIE", "lia-token")
}

func (s Security) GetAllowAccountCreation() bool {
	return s.src.getBool("ALLOW_ACCOUNT_CREATION", false)
}
