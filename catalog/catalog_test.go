package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	tables  map[int64]string
	lookups int
}

func (f *fakeIndex) TargetTable(_ context.Context, id int64) (string, error) {
	f.lookups++
	name, ok := f.tables[id]
	if !ok {
		return "", ErrContentNotFound
	}
	return name, nil
}

type fakeCounterStore struct {
	fakeIndex
	counts  map[int64]int
	applied []int64
	failOn  int64
}

func (f *fakeCounterStore) AdjustPlanCount(_ context.Context, _ Table, id int64, dir Direction) error {
	if id == f.failOn {
		return errors.New("boom")
	}
	f.applied = append(f.applied, id)
	if dir == Increment {
		f.counts[id]++
	} else if f.counts[id] > 0 {
		f.counts[id]--
	}
	return nil
}

type mapCache map[int64]string

func (m mapCache) Get(_ context.Context, id int64) (string, bool) {
	v, ok := m[id]
	return v, ok
}

func (m mapCache) Set(_ context.Context, id int64, name string) { m[id] = name }

func TestParseTable(t *testing.T) {
	for _, tbl := range Tables {
		got, err := ParseTable(string(tbl))
		require.NoError(t, err)
		assert.Equal(t, tbl, got)
	}

	for _, bad := range []string{"", "users", "food_main; DROP TABLE courses", "FOOD_MAIN"} {
		_, err := ParseTable(bad)
		assert.ErrorIs(t, err, ErrInvalidTargetTable, bad)
	}
}

func TestResolver_Resolve(t *testing.T) {
	idx := &fakeIndex{tables: map[int64]string{1: "food_main", 2: "accounts"}}
	r := NewResolver(nil, nil)
	ctx := context.Background()

	got, err := r.Resolve(ctx, idx, 1)
	require.NoError(t, err)
	assert.Equal(t, Food, got)

	_, err = r.Resolve(ctx, idx, 2)
	assert.ErrorIs(t, err, ErrInvalidTargetTable)

	_, err = r.Resolve(ctx, idx, 3)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestResolver_Cache(t *testing.T) {
	idx := &fakeIndex{tables: map[int64]string{1: "stay_main"}}
	cache := mapCache{}
	r := NewResolver(cache, nil)
	ctx := context.Background()

	for range 3 {
		got, err := r.Resolve(ctx, idx, 1)
		require.NoError(t, err)
		assert.Equal(t, Lodging, got)
	}
	assert.Equal(t, 1, idx.lookups)
	assert.Equal(t, "stay_main", cache[1])

	// a poisoned entry falls back to the index
	cache[1] = "pg_catalog.pg_user"
	got, err := r.Resolve(ctx, idx, 1)
	require.NoError(t, err)
	assert.Equal(t, Lodging, got)
	assert.Equal(t, 2, idx.lookups)
}

func TestCounter_Adjust(t *testing.T) {
	s := &fakeCounterStore{
		fakeIndex: fakeIndex{tables: map[int64]string{1: "food_main", 2: "culture_main", 3: "leports_main"}},
		counts:    map[int64]int{1: 0, 2: 4, 3: 1},
	}
	c := NewCounter(NewResolver(nil, nil))
	ctx := context.Background()

	require.NoError(t, c.Adjust(ctx, s, []int64{3, 1, 3, 2}, Increment))
	assert.Equal(t, []int64{1, 2, 3}, s.applied)
	assert.Equal(t, map[int64]int{1: 1, 2: 5, 3: 2}, s.counts)

	s.applied = nil
	require.NoError(t, c.Adjust(ctx, s, []int64{1, 1}, Decrement))
	require.NoError(t, c.Adjust(ctx, s, []int64{1}, Decrement))
	assert.Equal(t, 0, s.counts[1])
}

func TestCounter_AdjustStopsOnFailure(t *testing.T) {
	s := &fakeCounterStore{
		fakeIndex: fakeIndex{tables: map[int64]string{1: "food_main", 3: "food_main"}},
		counts:    map[int64]int{},
	}
	c := NewCounter(NewResolver(nil, nil))

	err := c.Adjust(context.Background(), s, []int64{1, 2, 3}, Increment)
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.Equal(t, []int64{1}, s.applied)

	s.applied = nil
	s.failOn = 1
	err = c.Adjust(context.Background(), s, []int64{1, 3}, Increment)
	assert.Error(t, err)
	assert.Empty(t, s.applied)
}
