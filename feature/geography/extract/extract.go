package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"geo-manager/core/normalize"
	"geo-manager/core/reconcile"
	"geo-manager/core/storage"
	"geo-manager/core/utils"

	"github.com/minio/minio-go/v7"
)

// Extractor fetches external geographic datasets and flattens them into
// source records scoped to a parent. A dataset reference may be an http(s)
// URL, a local file path, or an s3://bucket/key object in the configured
// storage backend.
//
// Fetched payloads are cached per reference for the lifetime of the
// extractor, so reconciling many parent scopes against one dataset costs a
// single fetch.
type Extractor struct {
	httpClient *http.Client
	store      storage.Client
	timeout    time.Duration

	// snapshotBucket, when set, receives a copy of every fetched http or
	// file dataset so a run can be reproduced later from storage.
	snapshotBucket string

	mu    sync.Mutex
	cache map[string][]byte
}

// New creates an extractor. The store client may be nil when s3:// dataset
// references are not used. The timeout bounds every fetch; a hang is a
// FetchError, never a stalled batch.
func New(store storage.Client, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		timeout:    timeout,
		cache:      make(map[string][]byte),
	}
}

// SnapshotTo enables snapshot publishing into the given bucket. Every
// dataset fetched over http or from a file is uploaded under snapshots/ so
// the exact payload a run saw stays available for replay. Requires a store
// client.
func (e *Extractor) SnapshotTo(bucket string) {
	e.snapshotBucket = bucket
}

// Countries extracts the countries dataset and scopes every record to the
// given parent key (the owning continent).
func (e *Extractor) Countries(ctx context.Context, ref, parentKey string) ([]reconcile.SourceRecord, error) {
	data, err := e.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	var rows []countryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &ParseError{Ref: ref, Reason: "expected an array of {id, iso2, name} objects", Err: err}
	}
	if len(rows) > 0 && !anyCountryKeys(rows) {
		return nil, &ParseError{Ref: ref, Reason: "missing required keys iso2/name"}
	}

	records := make([]reconcile.SourceRecord, 0, len(rows))
	for _, row := range rows {
		rec := reconcile.SourceRecord{
			Name:          row.Name,
			ParentKey:     parentKey,
			CandidateCode: row.ISO2,
			Enrichment:    map[string]any{"code": strings.ToUpper(row.ISO2)},
		}
		records = append(records, rec)
	}
	return records, nil
}

// Provinces extracts the flat states dataset filtered to one country scope
// identified by its ISO2 code.
func (e *Extractor) Provinces(ctx context.Context, ref, countryISO2 string) ([]reconcile.SourceRecord, error) {
	data, err := e.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	var rows []stateRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &ParseError{Ref: ref, Reason: "expected an array of {name, state_code, country_code} objects", Err: err}
	}
	if len(rows) > 0 && !anyStateKeys(rows) {
		return nil, &ParseError{Ref: ref, Reason: "missing required keys name/country_code"}
	}

	scope := strings.ToUpper(countryISO2)
	var records []reconcile.SourceRecord
	for _, row := range rows {
		if !strings.EqualFold(row.CountryCode, countryISO2) {
			continue
		}
		records = append(records, reconcile.SourceRecord{
			Name:          row.Name,
			ParentKey:     scope,
			CandidateCode: row.StateCode,
			Enrichment:    map[string]any{"code": row.StateCode},
		})
	}
	return records, nil
}

// States extracts the states-with-nested-cities dataset and joins it with
// the countries dataset, which maps each entry's dataset-internal
// country_id back to a stable ISO2 code. Entries whose country_id is not
// present in the countries dataset keep an empty CountryISO2 and are
// ignored by CitiesIn.
func (e *Extractor) States(ctx context.Context, statesRef, countriesRef string) ([]StateEntry, error) {
	countriesData, err := e.fetch(ctx, countriesRef)
	if err != nil {
		return nil, err
	}
	var countries []countryRow
	if err := json.Unmarshal(countriesData, &countries); err != nil {
		return nil, &ParseError{Ref: countriesRef, Reason: "expected an array of {id, iso2, name} objects", Err: err}
	}

	iso2ByID := make(map[int]string, len(countries))
	for _, c := range countries {
		if c.ID != 0 && c.ISO2 != "" {
			iso2ByID[c.ID] = strings.ToUpper(c.ISO2)
		}
	}

	statesData, err := e.fetch(ctx, statesRef)
	if err != nil {
		return nil, err
	}
	var rows []nestedStateRow
	if err := json.Unmarshal(statesData, &rows); err != nil {
		return nil, &ParseError{Ref: statesRef, Reason: "expected an array of {country_id, name, state_code, cities} objects", Err: err}
	}
	if len(rows) > 0 && !anyNestedKeys(rows) {
		return nil, &ParseError{Ref: statesRef, Reason: "missing required keys name/cities"}
	}

	entries := make([]StateEntry, 0, len(rows))
	for _, row := range rows {
		entry := StateEntry{
			CountryISO2: iso2ByID[row.CountryID],
			Name:        row.Name,
			StateCode:   row.StateCode,
		}
		for _, city := range row.Cities {
			entry.Cities = append(entry.Cities, CityEntry{
				Name:      city.Name,
				Latitude:  utils.ToFloat64(city.Latitude),
				Longitude: utils.ToFloat64(city.Longitude),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CitiesIn flattens the cities of the state entries belonging to one
// province scope. A state entry belongs to the province when it sits in the
// same country and either its state_code equals the province code
// (case-insensitive) or its name normalizes to the same key.
func CitiesIn(entries []StateEntry, countryISO2 string, province reconcile.Entity, parentKey string) []reconcile.SourceRecord {
	var records []reconcile.SourceRecord
	for _, entry := range entries {
		if !strings.EqualFold(entry.CountryISO2, countryISO2) {
			continue
		}
		codeMatch := province.Code != "" && strings.EqualFold(entry.StateCode, province.Code)
		if !codeMatch && !normalize.Equal(entry.Name, province.Name) {
			continue
		}
		for _, city := range entry.Cities {
			rec := reconcile.SourceRecord{
				Name:       city.Name,
				ParentKey:  parentKey,
				Enrichment: map[string]any{},
			}
			if city.Latitude != 0 || city.Longitude != 0 {
				rec.Enrichment["latitude"] = city.Latitude
				rec.Enrichment["longitude"] = city.Longitude
			}
			records = append(records, rec)
		}
	}
	return records
}

// fetch retrieves a dataset payload, consulting the per-reference cache
// first. All transport failures come back as *FetchError.
func (e *Extractor) fetch(ctx context.Context, ref string) ([]byte, error) {
	e.mu.Lock()
	if data, ok := e.cache[ref]; ok {
		e.mu.Unlock()
		return data, nil
	}
	e.mu.Unlock()

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = e.fetchHTTP(ctx, ref)
	case strings.HasPrefix(ref, "s3://"):
		data, err = e.fetchObject(ctx, ref)
	default:
		data, err = os.ReadFile(ref)
		if err != nil {
			err = &FetchError{Ref: ref, Err: err}
		}
	}
	if err != nil {
		return nil, err
	}

	// Objects already in storage need no snapshot of themselves.
	if e.snapshotBucket != "" && !strings.HasPrefix(ref, "s3://") {
		if err := e.publishSnapshot(ctx, ref, data); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	e.cache[ref] = data
	e.mu.Unlock()
	return data, nil
}

// publishSnapshot uploads a fetched payload into the snapshot bucket,
// creating the bucket on first use. Snapshots exist so a run can be audited
// or replayed; failing to keep one fails the run.
func (e *Extractor) publishSnapshot(ctx context.Context, ref string, data []byte) error {
	if e.store == nil {
		return &FetchError{Ref: ref, Err: fmt.Errorf("snapshots requested but no storage client configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	exists, err := e.store.BucketExists(ctx, e.snapshotBucket)
	if err != nil {
		return &FetchError{Ref: ref, Err: fmt.Errorf("checking snapshot bucket: %w", err)}
	}
	if !exists {
		if err := e.store.MakeBucket(ctx, e.snapshotBucket, minio.MakeBucketOptions{}); err != nil {
			return &FetchError{Ref: ref, Err: fmt.Errorf("creating snapshot bucket: %w", err)}
		}
	}

	_, err = e.store.PutObject(ctx, e.snapshotBucket, snapshotKey(ref), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return &FetchError{Ref: ref, Err: fmt.Errorf("publishing snapshot: %w", err)}
	}
	return nil
}

// snapshotKey derives a stable object key from a dataset reference.
func snapshotKey(ref string) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, ref)
	key = strings.Trim(key, "-")
	if !strings.HasSuffix(key, ".json") {
		key += ".json"
	}
	return "snapshots/" + key
}

func (e *Extractor) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Ref: ref, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}
	return data, nil
}

func (e *Extractor) fetchObject(ctx context.Context, ref string) ([]byte, error) {
	if e.store == nil {
		return nil, &FetchError{Ref: ref, Err: fmt.Errorf("no storage client configured for s3 references")}
	}

	trimmed := strings.TrimPrefix(ref, "s3://")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return nil, &FetchError{Ref: ref, Err: fmt.Errorf("expected s3://bucket/key")}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reader, err := e.store.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}
	return data, nil
}

// Shape checks: a dataset decoded without error but in which no row carries
// the required keys is the wrong dataset, not a dataset of invalid rows.

func anyCountryKeys(rows []countryRow) bool {
	for _, r := range rows {
		if r.Name != "" && r.ISO2 != "" {
			return true
		}
	}
	return false
}

func anyStateKeys(rows []stateRow) bool {
	for _, r := range rows {
		if r.Name != "" && r.CountryCode != "" {
			return true
		}
	}
	return false
}

func anyNestedKeys(rows []nestedStateRow) bool {
	for _, r := range rows {
		if r.Name != "" {
			return true
		}
	}
	return false
}
