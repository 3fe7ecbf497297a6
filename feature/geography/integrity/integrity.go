// Package integrity guards destructive operations on the hierarchy. An
// entity with dependents is never deleted; the caller gets the dependent
// count to surface instead.
package integrity

import (
	"context"

	"geo-manager/feature/geography/models"
)

// ChildCounter counts stored entities of one kind under a parent.
type ChildCounter interface {
	CountByParent(ctx context.Context, kind models.Kind, parentID uint) (int64, error)
}

// Guard decides whether a delete may proceed.
type Guard struct {
	counter ChildCounter
}

// NewGuard creates a guard over the given counter.
func NewGuard(counter ChildCounter) *Guard {
	return &Guard{counter: counter}
}

// Decision is the outcome of a delete check.
type Decision struct {
	// OK is true when the entity has no dependents and may be deleted.
	OK bool
	// Dependents is the number of direct children blocking the delete.
	Dependents int64
	// ChildKind names the dependent level, empty at the leaf.
	ChildKind models.Kind
}

// CheckDelete refuses deletion of any entity with direct dependents.
// Cities are the leaf level and always pass.
func (g *Guard) CheckDelete(ctx context.Context, kind models.Kind, id uint) (Decision, error) {
	child, ok := kind.Child()
	if !ok {
		return Decision{OK: true}, nil
	}

	count, err := g.counter.CountByParent(ctx, child, id)
	if err != nil {
		return Decision{}, err
	}

	return Decision{OK: count == 0, Dependents: count, ChildKind: child}, nil
}
