package integrity

import (
	"context"
	"errors"
	"testing"

	"geo-manager/feature/geography/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	count int64
	err   error

	gotKind   models.Kind
	gotParent uint
}

func (s *stubCounter) CountByParent(_ context.Context, kind models.Kind, parentID uint) (int64, error) {
	s.gotKind = kind
	s.gotParent = parentID
	return s.count, s.err
}

func TestCheckDelete_RefusesWithDependents(t *testing.T) {
	counter := &stubCounter{count: 12}
	guard := NewGuard(counter)

	decision, err := guard.CheckDelete(context.Background(), models.KindCountry, 4)
	require.NoError(t, err)

	assert.False(t, decision.OK)
	assert.EqualValues(t, 12, decision.Dependents)
	assert.Equal(t, models.KindProvince, decision.ChildKind)
	assert.Equal(t, models.KindProvince, counter.gotKind)
	assert.EqualValues(t, 4, counter.gotParent)
}

func TestCheckDelete_AllowsWithoutDependents(t *testing.T) {
	guard := NewGuard(&stubCounter{count: 0})

	decision, err := guard.CheckDelete(context.Background(), models.KindContinent, 1)
	require.NoError(t, err)
	assert.True(t, decision.OK)
	assert.Zero(t, decision.Dependents)
}

func TestCheckDelete_CitiesAlwaysPass(t *testing.T) {
	counter := &stubCounter{count: 99} // must never be consulted
	guard := NewGuard(counter)

	decision, err := guard.CheckDelete(context.Background(), models.KindCity, 8)
	require.NoError(t, err)
	assert.True(t, decision.OK)
	assert.Empty(t, counter.gotKind)
}

func TestCheckDelete_CounterError(t *testing.T) {
	guard := NewGuard(&stubCounter{err: errors.New("connection lost")})

	_, err := guard.CheckDelete(context.Background(), models.KindProvince, 2)
	assert.Error(t, err)
}
