package merge

import (
	"context"
	"testing"

	"geo-manager/core/reconcile"
	"geo-manager/feature/geography/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestLoadScope_ScopedByParent(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := newTableAdapter(db, models.KindCountry, 3)

	rows := sqlmock.NewRows([]string{"id", "name", "code"}).
		AddRow(1, "Pakistan", "PK").
		AddRow(2, "India", "IN")
	mock.ExpectQuery("SELECT id, name, code FROM `countries` WHERE continent_id = ?").
		WillReturnRows(rows)

	entities, err := adapter.loadScope(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, reconcile.Entity{ID: 1, Name: "Pakistan", Code: "PK"}, entities[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadScope_CitiesHaveNoCodeColumn(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := newTableAdapter(db, models.KindCity, 7)

	rows := sqlmock.NewRows([]string{"id", "name", "code"}).
		AddRow(10, "Lahore", "")
	mock.ExpectQuery("SELECT id, name, '' AS code FROM `cities` WHERE province_id = ?").
		WillReturnRows(rows)

	entities, err := adapter.loadScope(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Empty(t, entities[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadScope_RootHasNoParentClause(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := newTableAdapter(db, models.KindContinent, 0)

	rows := sqlmock.NewRows([]string{"id", "name", "code"}).
		AddRow(1, "Asia", "AS")
	mock.ExpectQuery("SELECT id, name, code FROM `continents`").
		WillReturnRows(rows)

	entities, err := adapter.loadScope(context.Background())
	require.NoError(t, err)
	assert.Len(t, entities, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_WritesIdentityAndEnrichment(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := newTableAdapter(db, models.KindProvince, 5)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `provinces`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := adapter.insert(context.Background(), reconcile.UpsertOp{
		Name:        "Punjab",
		NameKey:     "punjab",
		SetOnInsert: map[string]any{"region": "Asia"},
		Set:         map[string]any{"code": "PB"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_RowsAffectedDrivesChanged(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := newTableAdapter(db, models.KindCountry, 3)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `countries` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := adapter.update(context.Background(), 2, map[string]any{"flag": "pk.svg"})
	require.NoError(t, err)
	assert.True(t, changed)

	// MySQL affects zero rows when the values already match.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `countries` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	changed, err = adapter.update(context.Background(), 2, map[string]any{"flag": "pk.svg"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
