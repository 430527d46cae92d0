package inbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"movehub/internal/domain"
	"movehub/internal/modules/realtime"
)

func persisted(id int64, typ domain.NotificationType, createdAt time.Time, read bool) domain.Notification {
	return domain.Notification{
		ID:        id,
		UserID:    1,
		Type:      typ,
		Title:     "Предложена цена",
		Message:   "Перевозчик предложил 250.00",
		Data:      json.RawMessage(`{"quote_id":"q-1","proposed_price":25000}`),
		Priority:  domain.PriorityMedium,
		IsRead:    read,
		CreatedAt: createdAt,
	}
}

func TestGenericAndShortcutCollapseIntoOneEntry(t *testing.T) {
	in := New()
	now := time.Now()

	record := persisted(101, domain.NotifPriceProposed, now, false)
	in.ApplyLive(&realtime.Event{
		Channel:        realtime.ChannelNotification,
		NotificationID: 101,
		Payload:        &record,
	})
	in.ApplyLive(&realtime.Event{
		Channel:        string(domain.NotifPriceProposed),
		NotificationID: 101,
		Payload:        map[string]any{"quote_id": "q-1", "proposed_price": 25000},
	})

	entries := in.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, int64(101), entries[0].NotificationID)
	assert.Equal(t, "Предложена цена", entries[0].Title)
	assert.Equal(t, 1, in.UnreadCount())
}

func TestRemergeIsIdempotent(t *testing.T) {
	in := New()
	now := time.Now()

	page := []domain.Notification{
		persisted(101, domain.NotifPriceProposed, now.Add(-time.Minute), false),
		persisted(102, domain.NotifNegotiationAccepted, now, true),
	}

	in.MergeHistory(page)
	first := in.Entries()

	in.MergeHistory(page)
	second := in.Entries()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, in.Len())
}

func TestMarkReadSurvivesStaleSnapshot(t *testing.T) {
	in := New()
	now := time.Now()

	in.MergeHistory([]domain.Notification{persisted(101, domain.NotifPriceProposed, now, false)})

	assert.True(t, in.MarkRead(101))
	assert.Equal(t, 0, in.UnreadCount())

	// stale page fetched before the mark-read landed on the server
	in.MergeHistory([]domain.Notification{persisted(101, domain.NotifPriceProposed, now, false)})

	entries := in.Entries()
	assert.Len(t, entries, 1)
	assert.True(t, entries[0].IsRead)
}

func TestOlderSnapshotDoesNotMarkNewerEntryRead(t *testing.T) {
	in := New()
	now := time.Now()

	// live event arrived just now, unread
	fresh := persisted(101, domain.NotifPriceProposed, now, false)
	in.ApplyLive(&realtime.Event{
		Channel:        realtime.ChannelNotification,
		NotificationID: 101,
		Payload:        &fresh,
	})

	// an out-of-order older copy claiming read must not win
	in.MergeHistory([]domain.Notification{persisted(101, domain.NotifPriceProposed, now.Add(-time.Hour), true)})

	assert.Equal(t, 1, in.UnreadCount())
}

func TestReconnectClosesDeliveryGap(t *testing.T) {
	in := New()
	now := time.Now()

	in.MergeHistory([]domain.Notification{persisted(101, domain.NotifPriceProposed, now.Add(-time.Minute), false)})
	assert.Equal(t, 1, in.Len())

	// 102 was pushed while the user had no live connection; only the
	// persisted log knows about it until the next fetch
	missed := persisted(102, domain.NotifNegotiationAccepted, now, false)

	err := in.Refresh(context.Background(), func(ctx context.Context, limit, offset int) ([]domain.Notification, error) {
		return []domain.Notification{missed, persisted(101, domain.NotifPriceProposed, now.Add(-time.Minute), false)}, nil
	}, 20)

	assert.NoError(t, err)
	assert.Equal(t, 2, in.Len())
}

func TestEntriesNewestFirst(t *testing.T) {
	in := New()
	now := time.Now()

	in.MergeHistory([]domain.Notification{
		persisted(101, domain.NotifPriceProposed, now.Add(-2*time.Minute), false),
		persisted(103, domain.NotifStatusUpdated, now, false),
		persisted(102, domain.NotifClientPriceProposed, now.Add(-time.Minute), false),
	})

	entries := in.Entries()
	assert.Equal(t, []int64{103, 102, 101}, []int64{
		entries[0].NotificationID, entries[1].NotificationID, entries[2].NotificationID,
	})
}

func TestEphemeralEventKeepsLocalIdentity(t *testing.T) {
	in := New()

	// no persisted identity yet: the entry lives under a client-local key
	in.ApplyLive(&realtime.Event{
		Channel: "new_message",
		Payload: map[string]any{"conversation_id": "c-1"},
	})
	in.ApplyLive(&realtime.Event{
		Channel: "new_message",
		Payload: map[string]any{"conversation_id": "c-2"},
	})

	assert.Equal(t, 2, in.Len())
}
