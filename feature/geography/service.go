package geography

import (
	"context"

	"geo-manager/feature/geography/integrity"
	"geo-manager/feature/geography/models"

	"go.uber.org/zap"
)

// Service handles curated reads and writes on the geographic hierarchy.
// Deletes go through the integrity guard; an entity with dependents is
// refused, never cascaded.
type Service struct {
	store  *Store
	guard  *integrity.Guard
	logger *zap.Logger
}

// NewService creates a new geography service.
func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		guard:  integrity.NewGuard(store),
		logger: logger,
	}
}

// List returns entities of a kind, optionally scoped to a parent.
func (s *Service) List(ctx context.Context, kind models.Kind, parentID uint) (any, error) {
	return s.store.List(ctx, kind, parentID)
}

// Get loads a single entity.
func (s *Service) Get(ctx context.Context, kind models.Kind, id uint) (any, error) {
	return s.store.FindByID(ctx, kind, id)
}

// Create inserts a new entity.
func (s *Service) Create(ctx context.Context, model any) error {
	return s.store.Create(ctx, model)
}

// Update replaces an existing entity's fields.
func (s *Service) Update(ctx context.Context, model any) error {
	return s.store.Save(ctx, model)
}

// Delete removes an entity after the integrity check. When the check
// refuses, the returned decision carries the dependent count and the delete
// does not happen.
func (s *Service) Delete(ctx context.Context, kind models.Kind, id uint) (integrity.Decision, error) {
	decision, err := s.guard.CheckDelete(ctx, kind, id)
	if err != nil {
		return decision, err
	}
	if !decision.OK {
		s.logger.Warn("delete refused, entity has dependents",
			zap.String("kind", string(kind)),
			zap.Uint("id", id),
			zap.Int64("dependents", decision.Dependents),
		)
		return decision, nil
	}

	return decision, s.store.Delete(ctx, kind, id)
}
