package merge

import (
	"context"

	"geo-manager/core/reconcile"
	"geo-manager/feature/geography/models"

	"gorm.io/gorm"
)

// levelAdapter binds generic upsert operations to one concrete level of the
// hierarchy within one parent scope.
type levelAdapter interface {
	// level names the hierarchy level for logging.
	level() string
	// loadScope returns the matching view of every entity already stored
	// under the scope's parent.
	loadScope(ctx context.Context) ([]reconcile.Entity, error)
	// insertBatch submits all insert ops as one unordered multi-row
	// create. Per-item isolation on conflict is the executor's job.
	insertBatch(ctx context.Context, ops []reconcile.UpsertOp) error
	// insert creates one row.
	insert(ctx context.Context, op reconcile.UpsertOp) error
	// update applies the set columns to one row. changed is false when
	// the stored values already equal the incoming ones.
	update(ctx context.Context, id uint, set map[string]any) (changed bool, err error)
}

// tableAdapter implements levelAdapter for any of the four tables. Rows are
// written as column maps so identity and enrichment fields flow straight
// from the planned op without per-level struct plumbing.
type tableAdapter struct {
	db   *gorm.DB
	kind models.Kind

	// parentID scopes reads and inserts; zero at the root level.
	parentID uint

	// hasCode is false for cities, which carry no candidate-code column.
	hasCode bool
}

func newTableAdapter(db *gorm.DB, kind models.Kind, parentID uint) *tableAdapter {
	return &tableAdapter{
		db:       db,
		kind:     kind,
		parentID: parentID,
		hasCode:  kind != models.KindCity,
	}
}

func (a *tableAdapter) level() string { return string(a.kind) }

// scopeRow is the projection loadScope scans into.
type scopeRow struct {
	ID   uint
	Name string
	Code string
}

func (a *tableAdapter) loadScope(ctx context.Context) ([]reconcile.Entity, error) {
	sel := "id, name, '' AS code"
	if a.hasCode {
		sel = "id, name, code"
	}

	query := a.db.WithContext(ctx).Table(a.kind.Table()).Select(sel)
	if col := a.kind.ParentColumn(); col != "" {
		query = query.Where(col+" = ?", a.parentID)
	}

	var rows []scopeRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	entities := make([]reconcile.Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, reconcile.Entity{ID: row.ID, Name: row.Name, Code: row.Code})
	}
	return entities, nil
}

func (a *tableAdapter) insertBatch(ctx context.Context, ops []reconcile.UpsertOp) error {
	rows := make([]map[string]any, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, a.row(op))
	}
	return a.db.WithContext(ctx).Table(a.kind.Table()).Create(&rows).Error
}

func (a *tableAdapter) insert(ctx context.Context, op reconcile.UpsertOp) error {
	row := a.row(op)
	return a.db.WithContext(ctx).Table(a.kind.Table()).Create(&row).Error
}

func (a *tableAdapter) update(ctx context.Context, id uint, set map[string]any) (bool, error) {
	result := a.db.WithContext(ctx).
		Table(a.kind.Table()).
		Where("id = ?", id).
		Updates(set)
	if result.Error != nil {
		return false, result.Error
	}
	// MySQL reports zero affected rows when every column already holds
	// the incoming value; that is the matched-without-change signal.
	return result.RowsAffected > 0, nil
}

// row builds the column map for an insert: identity pair, set-on-insert
// fields, then enrichment. Identity columns are written exactly once here;
// update never touches them.
func (a *tableAdapter) row(op reconcile.UpsertOp) map[string]any {
	row := map[string]any{
		"name":     op.Name,
		"name_key": op.NameKey,
	}
	if col := a.kind.ParentColumn(); col != "" {
		row[col] = a.parentID
	}
	for k, v := range op.SetOnInsert {
		row[k] = v
	}
	for k, v := range op.Set {
		row[k] = v
	}
	return row
}
