package domain

import "time"

// Session identifies the signed-in user for the current request. A nil
// *Session means the request is anonymous.
type Session struct {
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// Authenticated reports whether s refers to a signed-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// AccessDecision is the result of checking a navigation against the session.
type AccessDecision int

const (
	AccessAllow AccessDecision = iota
	// AccessDeny sends the caller to the login page.
	AccessDeny
	// AccessRedirect sends the caller to Access.RedirectTo instead.
	AccessRedirect
)

type Access struct {
	Decision   AccessDecision
	RedirectTo string
}
