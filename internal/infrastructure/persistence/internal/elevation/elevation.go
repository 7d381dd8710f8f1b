// Package elevation carries narrowly scoped privilege grants through a context.
// It lives under persistence/internal so only persistence code can mint grants.
package elevation

import "context"

// Operation is a statement kind the tenant guard distinguishes
type Operation string

const (
	Query  Operation = "query"
	Create Operation = "create"
	Update Operation = "update"
	Delete Operation = "delete"
)

// Grant allows one operation on one table
type Grant struct {
	Table string
	Op    Operation
}

// Elevation is a set of grants issued for a single trusted call
type Elevation struct {
	Reason string
	Grants []Grant
}

// Allows reports whether the elevation covers op on table
func (e Elevation) Allows(table string, op Operation) bool {
	for _, g := range e.Grants {
		if g.Table == table && g.Op == op {
			return true
		}
	}
	return false
}

type elevationKey struct{}

// With returns a context carrying e. Nested elevations replace the outer one.
func With(ctx context.Context, e Elevation) context.Context {
	return context.WithValue(ctx, elevationKey{}, e)
}

// From returns the elevation in ctx, if any
func From(ctx context.Context) (Elevation, bool) {
	if ctx == nil {
		return Elevation{}, false
	}
	e, ok := ctx.Value(elevationKey{}).(Elevation)
	return e, ok
}
