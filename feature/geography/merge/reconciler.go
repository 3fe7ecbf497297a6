package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"geo-manager/core/normalize"
	"geo-manager/core/reconcile"
	"geo-manager/feature/geography/extract"
	"geo-manager/feature/geography/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Reconciler orchestrates full reconciliation runs level by level. Each
// parent scope is an independent unit of work: scopes below the country
// level run concurrently, and a failure in one scope never aborts another.
type Reconciler struct {
	db        *gorm.DB
	extractor *extract.Extractor
	logger    *zap.Logger

	// Concurrency bounds the number of parent scopes reconciled in
	// parallel. Values below one mean sequential.
	Concurrency int

	// DryRun plans every scope without writing. Reported insert and
	// update counts are the planned ones.
	DryRun bool
}

// NewReconciler creates a reconciler over an explicit database handle.
func NewReconciler(db *gorm.DB, extractor *extract.Extractor, logger *zap.Logger) *Reconciler {
	return &Reconciler{db: db, extractor: extractor, logger: logger}
}

// Continents reconciles the builtin continent seed into the root level.
func (r *Reconciler) Continents(ctx context.Context) (reconcile.Report, error) {
	return r.runScope(ctx, models.KindContinent, 0, continentRecords())
}

// Countries reconciles the countries dataset at ref into the scope of the
// named continent, which must already exist.
func (r *Reconciler) Countries(ctx context.Context, ref, continentName string) (reconcile.Report, error) {
	var rep reconcile.Report

	continent, err := r.findContinent(ctx, continentName)
	if err != nil {
		return rep, err
	}

	records, err := r.extractor.Countries(ctx, ref, normalize.Key(continentName))
	if err != nil {
		return rep, err
	}

	return r.runScope(ctx, models.KindCountry, continent.ID, records)
}

// Provinces reconciles the flat states dataset at ref. With countryCode set
// it targets that single country; otherwise every country carrying an ISO2
// code is a scope, and scopes run concurrently.
func (r *Reconciler) Provinces(ctx context.Context, ref, countryCode string) (reconcile.Report, error) {
	var rep reconcile.Report

	scopes, err := r.countryScopes(ctx, countryCode)
	if err != nil {
		return rep, err
	}

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.limit())

	for _, scope := range scopes {
		scope := scope
		group.Go(func() error {
			records, err := r.extractor.Provinces(gctx, ref, scope.Code)
			if err != nil {
				return err
			}
			// The region shim on a new province is the owning
			// continent's name. Identity fields are never rewritten,
			// so an existing province keeps whatever it was born with.
			for i := range records {
				records[i].Identity = map[string]any{"region": scope.Continent}
			}

			scopeRep, err := r.runScope(gctx, models.KindProvince, scope.ID, records)
			if err != nil {
				return err
			}

			mu.Lock()
			rep.Merge(scopeRep)
			mu.Unlock()
			return nil
		})
	}

	err = group.Wait()
	return rep, err
}

// Cities reconciles the nested states dataset at statesRef, joined against
// the countries dataset at countriesRef, into every province scope of the
// targeted countries. Both datasets are fetched once; the per-province
// filtering is pure.
func (r *Reconciler) Cities(ctx context.Context, statesRef, countriesRef, countryCode string) (reconcile.Report, error) {
	var rep reconcile.Report

	entries, err := r.extractor.States(ctx, statesRef, countriesRef)
	if err != nil {
		return rep, err
	}

	scopes, err := r.countryScopes(ctx, countryCode)
	if err != nil {
		return rep, err
	}

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.limit())

	for _, scope := range scopes {
		scope := scope
		group.Go(func() error {
			provinces, err := newTableAdapter(r.db, models.KindProvince, scope.ID).loadScope(gctx)
			if err != nil {
				return err
			}

			for _, province := range provinces {
				parentKey := strings.ToLower(scope.Code) + "/" + normalize.Key(province.Name)
				records := extract.CitiesIn(entries, scope.Code, province, parentKey)
				if len(records) == 0 {
					continue
				}

				scopeRep, err := r.runScope(gctx, models.KindCity, province.ID, records)
				if err != nil {
					return err
				}

				mu.Lock()
				rep.Merge(scopeRep)
				mu.Unlock()
			}
			return nil
		})
	}

	err = group.Wait()
	return rep, err
}

// runScope executes the full pipeline for one parent scope: load the
// existing entities, build the operations in memory, apply them.
func (r *Reconciler) runScope(ctx context.Context, kind models.Kind, parentID uint, records []reconcile.SourceRecord) (reconcile.Report, error) {
	adapter := newTableAdapter(r.db, kind, parentID)

	existing, err := adapter.loadScope(ctx)
	if err != nil {
		return reconcile.Report{}, fmt.Errorf("loading %s scope: %w", kind, err)
	}

	var rep reconcile.Report
	ops := reconcile.BuildOps(records, existing, &rep)

	if r.DryRun {
		for _, op := range ops {
			switch {
			case op.Existing == nil:
				rep.Inserted++
			case len(op.Set) > 0:
				rep.Updated++
			default:
				rep.Matched++
			}
		}
		r.logger.Info("dry run, no writes", append(rep.Fields(),
			zap.String("level", string(kind)),
			zap.Uint("parent_id", parentID),
		)...)
		return rep, nil
	}

	rep.Merge(newExecutor(adapter, r.logger).Execute(ctx, ops))
	return rep, nil
}

// findContinent resolves a continent by display name, compared normalized.
func (r *Reconciler) findContinent(ctx context.Context, name string) (models.Continent, error) {
	var continent models.Continent
	err := r.db.WithContext(ctx).
		Where("name_key = ?", normalize.Key(name)).
		First(&continent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return continent, fmt.Errorf("continent %q does not exist, reconcile continents first", name)
	}
	return continent, err
}

// countryScope is one country-level unit of work plus the continent name
// its new provinces inherit as their region shim.
type countryScope struct {
	ID        uint
	Name      string
	Code      string
	Continent string
}

// countryScopes lists the countries to reconcile under. With code set it is
// exactly one country; an unknown code is an error rather than an empty
// no-op run. Countries without an ISO2 code cannot be joined against the
// external datasets and are left out.
func (r *Reconciler) countryScopes(ctx context.Context, code string) ([]countryScope, error) {
	query := r.db.WithContext(ctx).
		Table(models.Country{}.TableName()).
		Select("countries.id, countries.name, countries.code, continents.name AS continent").
		Joins("JOIN continents ON continents.id = countries.continent_id").
		Where("countries.code <> ''")
	if code != "" {
		query = query.Where("countries.code = ?", strings.ToUpper(code))
	}

	var scopes []countryScope
	if err := query.Scan(&scopes).Error; err != nil {
		return nil, err
	}
	if code != "" && len(scopes) == 0 {
		return nil, fmt.Errorf("no country with code %q", strings.ToUpper(code))
	}
	return scopes, nil
}

func (r *Reconciler) limit() int {
	if r.Concurrency < 1 {
		return 1
	}
	return r.Concurrency
}
