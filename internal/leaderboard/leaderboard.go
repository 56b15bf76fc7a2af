package leaderboard

import (
	"sort"
	"sync"
	"time"
)

// BucketAllTime accumulates wins for the whole process lifetime; the
// monthly bucket partitions the same increments by calendar month.
const BucketAllTime = "alltime"

// BucketMonthly returns the bucket name for t's month, e.g. "2026-09".
func BucketMonthly(t time.Time) string {
	return t.Format("2006-01")
}

type Entry struct {
	Name string `json:"name"`
	Wins int64  `json:"wins"`
}

// Leaderboard is the process-wide win tally, shared by every session and
// mutated at the moment a player finishes the track. Counts only ever go
// up.
type Leaderboard struct {
	mu      sync.RWMutex
	buckets map[string]map[string]int64
	now     func() time.Time
}

func New() *Leaderboard {
	return &Leaderboard{
		buckets: make(map[string]map[string]int64),
		now:     time.Now,
	}
}

// Record adds one win for name to the all-time bucket and to the current
// monthly bucket, and reports which buckets were touched.
func (that *Leaderboard) Record(name string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	touched := []string{BucketAllTime, BucketMonthly(that.now())}
	for _, bucket := range touched {
		if that.buckets[bucket] == nil {
			that.buckets[bucket] = make(map[string]int64)
		}
		that.buckets[bucket][name]++
	}

	return touched
}

// Restore seeds a bucket entry, used to reload persisted counts at
// startup. Existing higher counts are kept.
func (that *Leaderboard) Restore(bucket, name string, wins int64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.buckets[bucket] == nil {
		that.buckets[bucket] = make(map[string]int64)
	}

	if that.buckets[bucket][name] < wins {
		that.buckets[bucket][name] = wins
	}
}

// Snapshot returns the bucket ranked by wins, ties broken by name.
func (that *Leaderboard) Snapshot(bucket string) []Entry {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entries := make([]Entry, 0, len(that.buckets[bucket]))
	for name, wins := range that.buckets[bucket] {
		entries = append(entries, Entry{Name: name, Wins: wins})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// Wins reports the current count for name in a bucket.
func (that *Leaderboard) Wins(bucket, name string) int64 {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.buckets[bucket][name]
}
