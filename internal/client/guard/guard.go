// Package guard gates protected views behind an authenticated session.
package guard

import "accesshub/internal/client/session"

// Require wraps a protected view: while the session is Authenticated the
// wrapped view renders unchanged, otherwise the login redirect renders
// instead. The decision is re-evaluated on every render and has no side
// effects beyond choosing which view runs.
func Require[V any](s *session.Manager, protected, login func() V) func() V {
	return func() V {
		if !s.Authenticated() {
			return login()
		}
		return protected()
	}
}
