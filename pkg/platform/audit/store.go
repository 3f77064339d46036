package audit

import "context"

// Store persists audit events. Append must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}
