// Package out defines outbound ports (driven ports) for the application.
package out

import "context"

// Completer sends one system+user exchange to a text-completion backend and
// returns the first completion's message content.
type Completer interface {
	Complete(ctx context.Context, credential, system, user string) (string, error)
}
