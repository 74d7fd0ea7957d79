package session

import (
	"time"

	"predictd/pkg/types"
)

const (
	// historyTopCandidates caps how many candidates an entry keeps.
	historyTopCandidates = 3
	// historySnapshotRunes caps the stored text snapshot, keeping its tail.
	historySnapshotRunes = 50
)

// historyRing is a fixed-capacity FIFO ring. Pushing onto a full ring
// overwrites the oldest entry.
type historyRing struct {
	buf  []types.HistoryEntry
	head int
	size int
}

func newHistoryRing(capacity int) *historyRing {
	return &historyRing{buf: make([]types.HistoryEntry, capacity)}
}

func (r *historyRing) push(e types.HistoryEntry) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = e
		r.size++
		return
	}
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
}

func (r *historyRing) len() int {
	return r.size
}

// entries returns a copy of the ring contents, oldest first.
func (r *historyRing) entries() []types.HistoryEntry {
	out := make([]types.HistoryEntry, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// newHistoryEntry condenses a successful prediction: the tail of the text
// that produced it plus its leading candidates.
func newHistoryEntry(text string, candidates []types.Candidate) types.HistoryEntry {
	top := candidates
	if len(top) > historyTopCandidates {
		top = top[:historyTopCandidates]
	}
	return types.HistoryEntry{
		Text:       tailRunes(text, historySnapshotRunes),
		Candidates: append([]types.Candidate(nil), top...),
		At:         time.Now().Unix(),
	}
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
