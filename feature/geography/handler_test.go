package geography_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"geo-manager/feature/geography"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	svc := geography.NewService(geography.NewStore(gormDB), zap.NewNop())
	h := geography.NewHandler(svc)

	app := fiber.New()
	h.RegisterRoutes(app)
	return app, mock
}

func TestHandleList(t *testing.T) {
	app, mock := setupApp(t)

	rows := sqlmock.NewRows([]string{"id", "name", "name_key", "code"}).
		AddRow(1, "Asia", "asia", "AS").
		AddRow(2, "Europe", "europe", "EU")
	mock.ExpectQuery("SELECT \\* FROM `continents`").WillReturnRows(rows)

	resp, err := app.Test(httptest.NewRequest("GET", "/geography/continent/", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Asia", list[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleList_UnknownKind(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/geography/galaxy/", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleGet_NotFound(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `countries`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	resp, err := app.Test(httptest.NewRequest("GET", "/geography/country/42", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleCreate_DerivesNameKey(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectBegin()
	// The normalized key is written by the server, never taken from the
	// client payload.
	mock.ExpectExec("INSERT INTO `continents`").
		WithArgs("São Paulo Land", "sao paulo land", "SP").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest("POST", "/geography/continent/",
		strings.NewReader(`{"name": "São Paulo Land", "code": "SP"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleCreate_DuplicateNameConflicts(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `continents`").
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	req := httptest.NewRequest("POST", "/geography/continent/",
		strings.NewReader(`{"name": "Asia", "code": "AS"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestHandleDelete_RefusedWithDependents(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `provinces` WHERE country_id = ?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/geography/country/4", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.EqualValues(t, 3, payload["dependents"])
	assert.Equal(t, "province", payload["child_kind"])

	// No delete statement may have been issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleDelete_LeafDeletes(t *testing.T) {
	app, mock := setupApp(t)

	// Cities have no dependents; no count query happens.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `cities`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := app.Test(httptest.NewRequest("DELETE", "/geography/city/8", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleDelete_EmptyScopeDeletes(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `countries` WHERE continent_id = ?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `continents`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := app.Test(httptest.NewRequest("DELETE", "/geography/continent/2", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
