package services

import (
	"sync"
	"time"

	"github.com/dstepanenko/tasktrack/internal/server/models"
)

// historyCap bounds the per-owner in-memory log.
const historyCap = 50

// HistoryEntry is one cached chat message.
type HistoryEntry struct {
	Role    models.MessageRole
	Content string
	At      time.Time
}

type ownerLog struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

// HistoryLog is a bounded per-owner append-only log of recent chat messages.
// It is the only process-wide mutable state in the service: access is
// synchronized per owner key, so concurrent callers for different owners
// never contend with each other.
type HistoryLog struct {
	mu   sync.RWMutex
	logs map[string]*ownerLog
}

// NewHistoryLog constructs an empty HistoryLog.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{logs: make(map[string]*ownerLog)}
}

func (h *HistoryLog) ownerLog(ownerID string) *ownerLog {
	h.mu.RLock()
	l, ok := h.logs[ownerID]
	h.mu.RUnlock()
	if ok {
		return l
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.logs[ownerID]; ok {
		return l
	}
	l = &ownerLog{}
	h.logs[ownerID] = l
	return l
}

// Append records a message for ownerID, evicting the oldest entries beyond
// the cap.
func (h *HistoryLog) Append(ownerID string, role models.MessageRole, content string) {
	l := h.ownerLog(ownerID)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, HistoryEntry{Role: role, Content: content, At: time.Now()})
	if len(l.entries) > historyCap {
		l.entries = append([]HistoryEntry(nil), l.entries[len(l.entries)-historyCap:]...)
	}
}

// Recent returns up to limit most recent entries for ownerID, oldest first.
// The result is a copy; callers may retain it freely.
func (h *HistoryLog) Recent(ownerID string, limit int) []HistoryEntry {
	l := h.ownerLog(ownerID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]HistoryEntry, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}

// Clear drops the cached entries for ownerID. The owner's log stays in the
// map and is truncated under its own lock, so an Append racing with Clear
// still lands in the live log rather than an evicted one.
func (h *HistoryLog) Clear(ownerID string) {
	h.mu.RLock()
	l, ok := h.logs[ownerID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
