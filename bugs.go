package main

import (
	"strconv"
	"sync"
)

// BugLog is the append-only list behind /bugreport, /bugs and /bugdel.
// Entries are 1-indexed for deletion, matching what /bugs shows.
type BugLog struct {
	mu      sync.Mutex
	entries []string
}

func newBugLog() *BugLog {
	return &BugLog{}
}

func (b *BugLog) Add(report string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, report)
}

func (b *BugLog) All() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.entries))
	copy(out, b.entries)

	return out
}

// Remove deletes the 1-based entry named by arg.
func (b *BugLog) Remove(arg string) error {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return errBadIndex
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if idx < 1 || idx > len(b.entries) {
		return errIndexOutOfRange
	}

	b.entries = append(b.entries[:idx-1], b.entries[idx:]...)

	return nil
}
