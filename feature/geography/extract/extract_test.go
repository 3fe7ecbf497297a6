package extract

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"geo-manager/core/reconcile"
	"geo-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const countriesJSON = `[
	{"id": 1, "iso2": "PK", "name": "Pakistan"},
	{"id": 2, "iso2": "IN", "name": "India"}
]`

const statesJSON = `[
	{"name": "Punjab", "state_code": "PB", "country_code": "PK"},
	{"name": "Sindh", "state_code": "SD", "country_code": "PK"},
	{"name": "Kerala", "state_code": "KL", "country_code": "IN"}
]`

const nestedStatesJSON = `[
	{"country_id": 1, "name": "Punjab", "state_code": "PB", "cities": [
		{"name": "Lahore", "latitude": "31.5204", "longitude": "74.3587"},
		{"name": "Faisalabad", "latitude": 31.4504, "longitude": 73.135}
	]},
	{"country_id": 99, "name": "Nowhere", "state_code": "NW", "cities": [{"name": "Ghost Town"}]}
]`

func TestCountries_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(countriesJSON))
	}))
	defer srv.Close()

	e := New(nil, 5*time.Second)
	records, err := e.Countries(context.Background(), srv.URL, "asia")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Pakistan", records[0].Name)
	assert.Equal(t, "asia", records[0].ParentKey)
	assert.Equal(t, "PK", records[0].CandidateCode)
	assert.Equal(t, "PK", records[0].Enrichment["code"])
}

func TestCountries_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := New(nil, 5*time.Second)
	_, err := e.Countries(context.Background(), srv.URL, "asia")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestCountries_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	e := New(nil, 50*time.Millisecond)
	_, err := e.Countries(context.Background(), srv.URL, "asia")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr, "a hang is treated as a fetch error")
}

func TestCountries_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	e := New(nil, 5*time.Second)
	_, err := e.Countries(context.Background(), srv.URL, "asia")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestCountries_WrongShape(t *testing.T) {
	// Decodes fine but carries none of the required keys.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"foo": "bar"}]`))
	}))
	defer srv.Close()

	e := New(nil, 5*time.Second)
	_, err := e.Countries(context.Background(), srv.URL, "asia")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestProvinces_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.json")
	require.NoError(t, os.WriteFile(path, []byte(statesJSON), 0o644))

	e := New(nil, 5*time.Second)
	records, err := e.Provinces(context.Background(), path, "pk")
	require.NoError(t, err)
	require.Len(t, records, 2, "only rows with country_code PK belong to the scope")

	assert.Equal(t, "Punjab", records[0].Name)
	assert.Equal(t, "PK", records[0].ParentKey)
	assert.Equal(t, "PB", records[0].CandidateCode)
}

func TestProvinces_FileMissing(t *testing.T) {
	e := New(nil, 5*time.Second)
	_, err := e.Provinces(context.Background(), "/nonexistent/states.json", "PK")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestStates_JoinAndFlatten(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/countries", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(countriesJSON))
	})
	mux.HandleFunc("/states", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(nestedStatesJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := New(nil, 5*time.Second)
	entries, err := e.States(context.Background(), srv.URL+"/states", srv.URL+"/countries")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "PK", entries[0].CountryISO2)
	require.Len(t, entries[0].Cities, 2)
	// String and numeric coordinates both land as floats.
	assert.InDelta(t, 31.5204, entries[0].Cities[0].Latitude, 1e-6)
	assert.InDelta(t, 73.135, entries[0].Cities[1].Longitude, 1e-6)

	// country_id 99 has no countries-dataset entry: no ISO2 join.
	assert.Empty(t, entries[1].CountryISO2)
}

func TestStates_FromStorage(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "geodata", "datasets/countries.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(countriesJSON)), nil)
	client.On("GetObject", mock.Anything, "geodata", "datasets/states.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(nestedStatesJSON)), nil)

	e := New(client, 5*time.Second)
	entries, err := e.States(context.Background(), "s3://geodata/datasets/states.json", "s3://geodata/datasets/countries.json")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	client.AssertExpectations(t)
}

func TestCitiesIn(t *testing.T) {
	e := New(nil, 5*time.Second)
	e.cache["states"] = []byte(nestedStatesJSON)
	e.cache["countries"] = []byte(countriesJSON)

	entries, err := e.States(context.Background(), "states", "countries")
	require.NoError(t, err)

	province := reconcile.Entity{ID: 7, Name: "Punjab", Code: "PB"}
	records := CitiesIn(entries, "PK", province, "pk/punjab")
	require.Len(t, records, 2)

	assert.Equal(t, "Lahore", records[0].Name)
	assert.Equal(t, "pk/punjab", records[0].ParentKey)
	assert.InDelta(t, 31.5204, records[0].Enrichment["latitude"].(float64), 1e-6)

	// Wrong country: nothing matches even though the state name does.
	assert.Empty(t, CitiesIn(entries, "IN", province, "in/punjab"))

	// Name fallback when the province has no code.
	noCode := reconcile.Entity{ID: 8, Name: "punjab"}
	assert.Len(t, CitiesIn(entries, "PK", noCode, "pk/punjab"), 2)
}

func TestFetch_PublishesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statesJSON))
	}))
	defer srv.Close()

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "geodata").Return(true, nil)
	client.On("PutObject", mock.Anything, "geodata",
		mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "snapshots/") }),
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	e := New(client, 5*time.Second)
	e.SnapshotTo("geodata")

	_, err := e.Provinces(context.Background(), srv.URL, "PK")
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestFetch_SnapshotCreatesMissingBucket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.json")
	require.NoError(t, os.WriteFile(path, []byte(statesJSON), 0o644))

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "geodata").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "geodata", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "geodata", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	e := New(client, 5*time.Second)
	e.SnapshotTo("geodata")

	_, err := e.Provinces(context.Background(), path, "PK")
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestFetch_SnapshotUploadFailureFailsTheFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.json")
	require.NoError(t, os.WriteFile(path, []byte(statesJSON), 0o644))

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "geodata").Return(true, nil)
	client.On("PutObject", mock.Anything, "geodata", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	e := New(client, 5*time.Second)
	e.SnapshotTo("geodata")

	_, err := e.Provinces(context.Background(), path, "PK")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "snapshots/https---example.org-countries.json", snapshotKey("https://example.org/countries.json"))
	assert.Equal(t, "snapshots/data-states.json", snapshotKey("/data/states.JSON"))
	assert.Equal(t, "snapshots/http---example.org-d.json", snapshotKey("http://example.org/d"))
}

func TestFetch_CachesPayload(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(statesJSON))
	}))
	defer srv.Close()

	e := New(nil, 5*time.Second)
	_, err := e.Provinces(context.Background(), srv.URL, "PK")
	require.NoError(t, err)
	_, err = e.Provinces(context.Background(), srv.URL, "IN")
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "one fetch serves every parent scope")
}
