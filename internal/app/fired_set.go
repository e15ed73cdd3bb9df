// internal/app/fired_set.go
package app

import (
	"sync"
	"time"
)

// minuteKeyLayout identifies one calendar minute in the configured zone.
const minuteKeyLayout = "2006-01-02 15:04"

// MinuteKey returns the FiredSet key of the minute t falls in.
func MinuteKey(t time.Time) string {
	return t.Format(minuteKeyLayout)
}

// FiredSet remembers which minutes already had their trigger handled.
// Keys are only ever added; the set lives as long as the process.
type FiredSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewFiredSet() *FiredSet {
	return &FiredSet{keys: make(map[string]struct{})}
}

// Mark inserts key and reports whether it was absent. Only the caller that
// gets true may send for that minute.
func (f *FiredSet) Mark(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.keys[key]; ok {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *FiredSet) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok
}

func (f *FiredSet) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}
