package merge

import (
	"context"
	"errors"

	"geo-manager/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Executor applies planned upsert operations to the store for one parent
// scope, isolating per-item conflicts so a single colliding record never
// blocks the rest of the batch from converging.
type Executor struct {
	adapter levelAdapter
	logger  *zap.Logger
}

// NewExecutor creates an executor over the given level adapter.
func newExecutor(adapter levelAdapter, logger *zap.Logger) *Executor {
	return &Executor{adapter: adapter, logger: logger}
}

// Execute runs all operations and returns the per-record outcome counts.
// Store errors are accounted per item; Execute itself never fails, because
// per-record problems must not abort the batch.
func (e *Executor) Execute(ctx context.Context, ops []reconcile.UpsertOp) reconcile.Report {
	var rep reconcile.Report

	var inserts, updates []reconcile.UpsertOp
	for _, op := range ops {
		if op.Existing == nil {
			inserts = append(inserts, op)
		} else {
			updates = append(updates, op)
		}
	}

	e.executeInserts(ctx, inserts, &rep)
	e.executeUpdates(ctx, updates, &rep)

	return rep
}

func (e *Executor) executeInserts(ctx context.Context, inserts []reconcile.UpsertOp, rep *reconcile.Report) {
	if len(inserts) == 0 {
		return
	}

	err := e.adapter.insertBatch(ctx, inserts)
	if err == nil {
		rep.Inserted += len(inserts)
		return
	}

	if !isDuplicateKey(err) {
		// A non-conflict bulk failure (connection loss, constraint other
		// than the natural key) is a store error for every item in it.
		e.logger.Error("bulk insert failed",
			zap.String("level", e.adapter.level()),
			zap.Int("ops", len(inserts)),
			zap.Error(err),
		)
		rep.Errored += len(inserts)
		return
	}

	// Duplicate-key class: another run (or a duplicate within the batch
	// that survived dedup by differing parent) got there first. Re-submit
	// individually so the one conflicting record does not block the rest.
	e.logger.Warn("bulk insert hit a duplicate key, retrying items individually",
		zap.String("level", e.adapter.level()),
		zap.Int("ops", len(inserts)),
	)

	for _, op := range inserts {
		switch err := e.adapter.insert(ctx, op); {
		case err == nil:
			rep.Inserted++
		case isDuplicateKey(err):
			rep.Skipped++
			e.logger.Warn("insert conflicts with an existing entity, skipped",
				zap.String("level", e.adapter.level()),
				zap.String("name", op.Name),
				zap.String("code", op.CandidateCode),
			)
		default:
			rep.Errored++
			e.logger.Error("insert failed",
				zap.String("level", e.adapter.level()),
				zap.String("name", op.Name),
				zap.Error(err),
			)
		}
	}
}

func (e *Executor) executeUpdates(ctx context.Context, updates []reconcile.UpsertOp, rep *reconcile.Report) {
	for _, op := range updates {
		if len(op.Set) == 0 {
			// Resolved, nothing to enrich.
			rep.Matched++
			continue
		}

		changed, err := e.adapter.update(ctx, op.Existing.ID, op.Set)
		switch {
		case err != nil:
			rep.Errored++
			e.logger.Error("update failed",
				zap.String("level", e.adapter.level()),
				zap.String("name", op.Name),
				zap.Uint("id", op.Existing.ID),
				zap.Error(err),
			)
		case changed:
			rep.Updated++
		default:
			rep.Matched++
		}
	}
}

// isDuplicateKey recognizes the duplicate-key class of store errors.
// Requires TranslateError on the gorm connection (see core/database).
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
