package geography

import (
	"context"

	"geo-manager/feature/geography/models"

	"gorm.io/gorm"
)

// Store is the persistence layer for the hierarchy. It works on an explicit
// database handle; nothing here reaches for process-global state.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over the given handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindByID loads one entity. Returns gorm.ErrRecordNotFound when absent.
func (s *Store) FindByID(ctx context.Context, kind models.Kind, id uint) (any, error) {
	model := emptyModel(kind)
	err := s.db.WithContext(ctx).First(model, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return model, nil
}

// List returns every entity of a kind, optionally scoped to one parent.
func (s *Store) List(ctx context.Context, kind models.Kind, parentID uint) (any, error) {
	query := s.db.WithContext(ctx).Order("name")
	if parentID != 0 {
		if col := kind.ParentColumn(); col != "" {
			query = query.Where(col+" = ?", parentID)
		}
	}

	slice := emptySlice(kind)
	if err := query.Find(slice).Error; err != nil {
		return nil, err
	}
	return slice, nil
}

// CountByParent counts entities of a kind under one parent. This is the
// child counter the integrity guard consults before a delete.
func (s *Store) CountByParent(ctx context.Context, kind models.Kind, parentID uint) (int64, error) {
	col := kind.ParentColumn()
	if col == "" {
		return 0, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Table(kind.Table()).
		Where(col+" = ?", parentID).
		Count(&count).Error
	return count, err
}

// Create inserts a model. Duplicate-key conflicts on the per-scope name
// index come back as gorm.ErrDuplicatedKey.
func (s *Store) Create(ctx context.Context, model any) error {
	return s.db.WithContext(ctx).Create(model).Error
}

// Save writes all fields of a model that carries a primary key.
func (s *Store) Save(ctx context.Context, model any) error {
	return s.db.WithContext(ctx).Save(model).Error
}

// Delete removes one entity by id.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id uint) error {
	return s.db.WithContext(ctx).Delete(emptyModel(kind), "id = ?", id).Error
}

func emptyModel(kind models.Kind) any {
	switch kind {
	case models.KindContinent:
		return &models.Continent{}
	case models.KindCountry:
		return &models.Country{}
	case models.KindProvince:
		return &models.Province{}
	default:
		return &models.City{}
	}
}

func emptySlice(kind models.Kind) any {
	switch kind {
	case models.KindContinent:
		return &[]models.Continent{}
	case models.KindCountry:
		return &[]models.Country{}
	case models.KindProvince:
		return &[]models.Province{}
	default:
		return &[]models.City{}
	}
}
