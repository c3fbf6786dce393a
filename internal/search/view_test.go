package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
)

func newView(t *testing.T, delay time.Duration) (*View, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	return NewView(instructors(t), sched, delay), sched
}

func TestViewFilterSortReset(t *testing.T) {
	v, _ := newView(t, time.Millisecond)

	s := v.Snapshot()
	assert.Equal(t, 6, s.Count)
	assert.True(t, s.HasMore)
	assert.Equal(t, SortRelevance, s.Sort)

	s, err := v.SetFilter(KeyRegion, "東京")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(s.Items))

	s, err = v.SetSort("price_high")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(s.Items))

	_, err = v.SetFilter("color", "red")
	require.ErrorIs(t, err, ErrUnknownFilter)
	assert.Equal(t, "東京", v.Snapshot().Criteria.Region, "a rejected filter keeps the criteria")

	_, err = v.SetSort("cheapest")
	require.ErrorIs(t, err, ErrUnknownSort)

	s = v.Reset()
	assert.Equal(t, 6, s.Count)
	assert.Equal(t, SortPriceHigh, s.Sort)
	assert.Equal(t, Criteria{}, s.Criteria)
}

func TestViewLoadMore(t *testing.T) {
	v, _ := newView(t, 10*time.Millisecond)

	s := v.LoadMore()
	assert.True(t, s.Loading)
	assert.True(t, s.HasMore)

	require.Eventually(t, func() bool {
		s := v.Snapshot()
		return !s.Loading && !s.HasMore
	}, time.Second, 5*time.Millisecond)

	s = v.LoadMore()
	assert.False(t, s.Loading, "nothing left to load")
	assert.Equal(t, 6, s.Count, "load more never adds items")
}

func TestViewLoadMoreDiscardedAfterStop(t *testing.T) {
	v, sched := newView(t, 10*time.Millisecond)

	v.LoadMore()
	sched.Stop()
	v.Close()

	time.Sleep(30 * time.Millisecond)
	s := v.Snapshot()
	assert.True(t, s.Loading)
	assert.True(t, s.HasMore)
}
