// Package inbox реализует клиентскую сторону уведомлений: слияние
// сохранённой истории с live-событиями в единый список без дублей.
package inbox

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"movehub/internal/domain"
	"movehub/internal/modules/realtime"
)

// Entry — одна видимая запись в списке уведомлений
type Entry struct {
	Type           string          `json:"type"`
	NotificationID int64           `json:"notification_id,omitempty"`
	Title          string          `json:"title,omitempty"`
	Message        string          `json:"message,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Priority       string          `json:"priority,omitempty"`
	IsRead         bool            `json:"is_read"`
	Timestamp      time.Time       `json:"timestamp"`

	// lastWrite is the moment of the newest merge that touched this entry,
	// readPinned holds an optimistic local mark-read until confirmed
	lastWrite  time.Time
	readPinned bool
	localID    int64
}

type entryKey struct {
	typ   string
	id    int64
	local int64 // set only when the record has no persisted identity yet
}

// FetchFunc returns one page of persisted history, most recent first
type FetchFunc func(ctx context.Context, limit, offset int) ([]domain.Notification, error)

// Inbox merges history pages and live events. Safe for concurrent use.
type Inbox struct {
	mu      sync.Mutex
	entries map[entryKey]*Entry
	nextLoc int64
	now     func() time.Time
}

func New() *Inbox {
	return &Inbox{
		entries: make(map[entryKey]*Entry),
		nextLoc: 1,
		now:     time.Now,
	}
}

// Refresh fetches one page of persisted history and merges it in.
// Re-running after a dropped connection closes any delivery gap.
func (in *Inbox) Refresh(ctx context.Context, fetch FetchFunc, limit int) error {
	if limit <= 0 {
		limit = 20
	}
	records, err := fetch(ctx, limit, 0)
	if err != nil {
		return err
	}
	in.MergeHistory(records)
	return nil
}

// MergeHistory merges a persisted snapshot. Re-merging the same page is
// idempotent: без новых событий видимый набор не меняется.
func (in *Inbox) MergeHistory(records []domain.Notification) {
	in.mu.Lock()
	defer in.mu.Unlock()

	for i := range records {
		n := records[i]
		in.absorb(Entry{
			Type:           string(n.Type),
			NotificationID: n.ID,
			Title:          n.Title,
			Message:        n.Message,
			Data:           n.Data,
			Priority:       string(n.Priority),
			IsRead:         n.IsRead,
			Timestamp:      n.CreatedAt,
		})
	}
}

// ApplyLive ingests one event from the fan-out channel. The generic
// channel carries the full record; type-named shortcuts carry only the
// data payload and the notification id. Both map onto the same key, so
// the pair produces a single visible entry.
func (in *Inbox) ApplyLive(ev *realtime.Event) {
	if ev == nil {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if ev.Channel == realtime.ChannelNotification {
		if n, ok := decodeNotification(ev.Payload); ok {
			ts := n.CreatedAt
			if ts.IsZero() {
				ts = in.now()
			}
			in.absorb(Entry{
				Type:           string(n.Type),
				NotificationID: n.ID,
				Title:          n.Title,
				Message:        n.Message,
				Data:           n.Data,
				Priority:       string(n.Priority),
				IsRead:         n.IsRead,
				Timestamp:      ts,
			})
			return
		}
	}

	data, _ := json.Marshal(ev.Payload)
	in.absorb(Entry{
		Type:           ev.Channel,
		NotificationID: ev.NotificationID,
		Data:           data,
		Timestamp:      in.now(),
	})
}

// MarkRead помечает запись прочитанной локально, не дожидаясь сервера.
// The flag is sticky: a later stale merge cannot flip it back.
func (in *Inbox) MarkRead(notificationID int64) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	for _, e := range in.entries {
		if e.NotificationID == notificationID {
			e.IsRead = true
			e.readPinned = true
			return true
		}
	}
	return false
}

// Entries returns the merged view, newest first.
func (in *Inbox) Entries() []Entry {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := make([]Entry, 0, len(in.entries))
	for _, e := range in.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].NotificationID > out[j].NotificationID
	})
	return out
}

func (in *Inbox) UnreadCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	count := 0
	for _, e := range in.entries {
		if !e.IsRead {
			count++
		}
	}
	return count
}

func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.entries)
}

// absorb merges one incoming write under in.mu. Newest write wins for
// content fields; read state never regresses: an older snapshot cannot
// mark a newer entry read, and nothing un-reads a pinned entry.
func (in *Inbox) absorb(incoming Entry) {
	key := in.keyFor(&incoming)

	existing, ok := in.entries[key]
	if !ok {
		e := incoming
		e.lastWrite = incoming.Timestamp
		in.entries[key] = &e
		return
	}

	newest := !incoming.Timestamp.Before(existing.lastWrite)
	if newest {
		if incoming.Title != "" {
			existing.Title = incoming.Title
		}
		if incoming.Message != "" {
			existing.Message = incoming.Message
		}
		if len(incoming.Data) > 0 {
			existing.Data = incoming.Data
		}
		if incoming.Priority != "" {
			existing.Priority = incoming.Priority
		}
		existing.Timestamp = incoming.Timestamp
		existing.lastWrite = incoming.Timestamp
		if incoming.IsRead {
			existing.IsRead = true
		}
	} else {
		// older record only fills gaps and never touches the read flag
		if existing.Title == "" {
			existing.Title = incoming.Title
		}
		if existing.Message == "" {
			existing.Message = incoming.Message
		}
		if len(existing.Data) == 0 {
			existing.Data = incoming.Data
		}
		if existing.Priority == "" {
			existing.Priority = incoming.Priority
		}
	}

	if existing.readPinned {
		existing.IsRead = true
	}
}

func (in *Inbox) keyFor(e *Entry) entryKey {
	if e.NotificationID != 0 {
		return entryKey{typ: e.Type, id: e.NotificationID}
	}
	e.localID = in.nextLoc
	in.nextLoc++
	return entryKey{typ: e.Type, local: e.localID}
}

func decodeNotification(payload any) (*domain.Notification, bool) {
	switch v := payload.(type) {
	case *domain.Notification:
		return v, true
	case domain.Notification:
		return &v, true
	default:
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, false
		}
		var n domain.Notification
		if err := json.Unmarshal(raw, &n); err != nil || n.ID == 0 {
			return nil, false
		}
		return &n, true
	}
}
