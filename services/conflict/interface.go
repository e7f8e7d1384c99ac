package conflict

import (
	"context"

	"clinicore/models"
)

// Side selects which record of a conflict pair an operation targets.
type Side string

const (
	SideExternal Side = "external"
	SideInternal Side = "internal"
)

// Action is one of the operations offered for a presented conflict.
type Action string

const (
	ActionRetime  Action = "retime"
	ActionDelete  Action = "delete"
	ActionPromote Action = "promote"
	ActionDismiss Action = "dismiss"
)

// Resolution is one operator decision over a detected conflict candidate.
// The candidate is carried by value: it is transient state from the last
// reconciliation pass, and record identity is re-established by ID lookup at
// execution time.
type Resolution struct {
	Candidate models.ConflictCandidate `json:"candidate" binding:"required"`
	Action    Action                   `json:"action" binding:"required"`
	Side      Side                     `json:"side,omitempty"`
	NewHour   string                   `json:"newHour,omitempty"` // "15:04", retime only
}

// Resolver executes resolution operations. A failed operation leaves the
// candidate unresolved; callers must re-run reconciliation afterwards either
// way so the grid reflects current truth.
type Resolver interface {
	Resolve(ctx context.Context, res Resolution) error
}
