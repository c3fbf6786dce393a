package search

import (
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
)

// Snapshot is the result pane of a search view.
type Snapshot struct {
	Items    []catalog.Instructor
	Count    int
	HasMore  bool
	Loading  bool
	Criteria Criteria
	Sort     SortKey
}

// View is the instructor search of one session. The result list is
// recomputed from the source on every criteria or sort change.
type View struct {
	mu        sync.Mutex
	sched     *scheduler.Scheduler
	source    []catalog.Instructor
	loadDelay time.Duration

	criteria Criteria
	sort     SortKey
	results  []catalog.Instructor
	hasMore  bool
	loading  bool
	closed   bool
}

func NewView(source []catalog.Instructor, sched *scheduler.Scheduler, loadDelay time.Duration) *View {
	v := &View{
		sched:     sched,
		source:    source,
		loadDelay: loadDelay,
		sort:      SortRelevance,
		hasMore:   true,
	}
	v.recompute()
	return v
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) SetFilter(key string, value any) (Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := v.criteria
	if err := next.Set(key, value); err != nil {
		return v.snapshotLocked(), err
	}
	v.criteria = next
	v.recompute()
	return v.snapshotLocked(), nil
}

func (v *View) SetSort(key string) (Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	sort, err := ParseSort(key)
	if err != nil {
		return v.snapshotLocked(), err
	}
	v.sort = sort
	v.recompute()
	return v.snapshotLocked(), nil
}

// Reset clears every filter. The sort key is kept.
func (v *View) Reset() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.criteria = Criteria{}
	v.recompute()
	return v.snapshotLocked()
}

// LoadMore simulates fetching another page: it marks the view loading and,
// after the load delay, reports that nothing more is available.
func (v *View) LoadMore() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.loading || !v.hasMore {
		return v.snapshotLocked()
	}
	v.loading = true
	v.sched.After(v.loadDelay, v.finishLoad)
	return v.snapshotLocked()
}

func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *View) finishLoad() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || !v.loading {
		return
	}
	v.loading = false
	v.hasMore = false
}

func (v *View) recompute() {
	v.results = Apply(v.source, v.criteria, v.sort)
}

func (v *View) snapshotLocked() Snapshot {
	c := v.criteria
	c.Categories = slices.Clone(c.Categories)
	c.AgeGroups = slices.Clone(c.AgeGroups)
	return Snapshot{
		Items:    slices.Clone(v.results),
		Count:    len(v.results),
		HasMore:  v.hasMore,
		Loading:  v.loading,
		Criteria: c,
		Sort:     v.sort,
	}
}
