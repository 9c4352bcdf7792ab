package snapshot

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/garyellow/ntpu-course-master/internal/catalog"
	"github.com/garyellow/ntpu-course-master/internal/logger"
	"github.com/garyellow/ntpu-course-master/internal/metrics"
)

const (
	viewLatest = "latest"
	viewPeriod = "period"
)

// Key identifies a memoized period view of one dataset.
type Key struct {
	Dataset  string
	Year     int
	Semester int
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%d_%d", k.Dataset, k.Year, k.Semester)
}

// Cache publishes the latest snapshot and memoizes period views.
//
// Views are keyed by dataset identity, so a refresh never serves a view
// computed from an older dataset. Views of older datasets are kept until
// the process exits; there is no eviction.
type Cache struct {
	current atomic.Pointer[Snapshot]
	views   sync.Map // Key -> *Snapshot
	sf      singleflight.Group
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewCache creates an empty cache. metrics and log may be nil.
func NewCache(m *metrics.Metrics, log *logger.Logger) *Cache {
	return &Cache{metrics: m, log: log}
}

// Publish atomically replaces the latest snapshot.
func (c *Cache) Publish(s *Snapshot) {
	if s == nil {
		return
	}
	c.current.Store(s)
	c.metrics.RecordSnapshotPublished(s.Len(), float64(s.LoadedAt().Unix()))
	if c.log != nil {
		c.log.WithModule("snapshot").
			WithField("dataset", s.ID()).
			WithField("records", s.Len()).
			Info("Snapshot published")
	}
}

// Latest returns the most recently published snapshot, or false if none exists.
func (c *Cache) Latest() (*Snapshot, bool) {
	s := c.current.Load()
	if s == nil {
		c.metrics.RecordCacheMiss(viewLatest)
		return nil, false
	}
	c.metrics.RecordCacheHit(viewLatest)
	return s, true
}

// ByPeriod returns the records of the latest snapshot that belong to the
// given period. It returns false when no snapshot exists or the period has
// no records; empty views are not memoized.
func (c *Cache) ByPeriod(year, semester int) (*Snapshot, bool) {
	latest := c.current.Load()
	if latest == nil {
		c.metrics.RecordCacheMiss(viewPeriod)
		return nil, false
	}

	key := Key{Dataset: latest.ID(), Year: year, Semester: semester}
	if v, ok := c.views.Load(key); ok {
		c.metrics.RecordCacheHit(viewPeriod)
		return v.(*Snapshot), true
	}
	c.metrics.RecordCacheMiss(viewPeriod)

	v, _, shared := c.sf.Do(key.String(), func() (any, error) {
		if v, ok := c.views.Load(key); ok {
			return v, nil
		}
		period := catalog.Period{Year: year, Semester: semester}
		view := latest.Filter(period.String(), period.Matches)
		if view.Empty() {
			return view, nil
		}
		c.views.Store(key, view)
		if c.log != nil {
			c.log.WithModule("snapshot").
				WithField("view", key.String()).
				WithField("records", view.Len()).
				Debug("Period view computed")
		}
		return view, nil
	})
	if shared {
		c.metrics.RecordSingleflightDedup(viewPeriod)
	}

	view := v.(*Snapshot)
	if view.Empty() {
		return nil, false
	}
	return view, true
}

// Views returns the number of memoized period views.
func (c *Cache) Views() int {
	n := 0
	c.views.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
