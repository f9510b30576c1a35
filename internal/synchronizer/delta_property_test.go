package synchronizer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"notifysync/internal/domain"
	"notifysync/internal/model"
)

// snapshotGen draws snapshots over a small id pool so that ids repeat,
// disappear and come back across draws.
func snapshotGen() *rapid.Generator[[]model.Notification] {
	return rapid.Custom(func(t *rapid.T) []model.Notification {
		ids := rapid.SliceOfDistinct(rapid.IntRange(0, 7), rapid.ID[int]).Draw(t, "ids")
		items := make([]model.Notification, 0, len(ids))
		for _, id := range ids {
			items = append(items, model.Notification{
				ID:        fmt.Sprintf("n%d", id),
				CreatedAt: t0.Add(-time.Duration(rapid.IntRange(0, 5).Draw(t, "age")) * time.Minute),
				IsRead:    rapid.Bool().Draw(t, "read"),
			})
		}
		return items
	})
}

func TestDetectProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prev := snapshotGen().Draw(t, "prev")
		next := snapshotGen().Draw(t, "next")
		seen := IDs(prev)

		fresh := Detect(seen, next)

		freshIDs := IDs(fresh)
		for _, n := range fresh {
			if n.IsRead {
				t.Fatalf("read item %s reported as new", n.ID)
			}
			if _, ok := seen[n.ID]; ok {
				t.Fatalf("seen item %s reported as new", n.ID)
			}
		}
		for _, n := range next {
			_, wasSeen := seen[n.ID]
			_, reported := freshIDs[n.ID]
			if !n.IsRead && !wasSeen && !reported {
				t.Fatalf("unread unseen item %s not reported", n.ID)
			}
		}

		pos := 0
		for _, n := range next {
			if pos < len(fresh) && fresh[pos].ID == n.ID {
				pos++
			}
		}
		if pos != len(fresh) {
			t.Fatalf("detected items out of snapshot order")
		}
	})
}

func TestSortNewestFirstProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := snapshotGen().Draw(t, "items")
		sorted := make([]model.Notification, len(items))
		copy(sorted, items)
		SortNewestFirst(sorted)

		if len(sorted) != len(items) {
			t.Fatalf("length changed: %d != %d", len(sorted), len(items))
		}
		for i := 1; i < len(sorted); i++ {
			a, b := sorted[i-1], sorted[i]
			if a.CreatedAt.Before(b.CreatedAt) {
				t.Fatalf("%s before newer %s", a.ID, b.ID)
			}
			if a.CreatedAt.Equal(b.CreatedAt) && a.ID > b.ID {
				t.Fatalf("tie between %s and %s not ordered by id", a.ID, b.ID)
			}
		}

		again := make([]model.Notification, len(items))
		copy(again, items)
		for i, j := 0, len(again)-1; i < j; i, j = i+1, j-1 {
			again[i], again[j] = again[j], again[i]
		}
		SortNewestFirst(again)
		for i := range sorted {
			if sorted[i].ID != again[i].ID {
				t.Fatalf("order depends on input order at %d", i)
			}
		}
	})
}

type scriptedRemote struct {
	next model.Snapshot
}

func (r *scriptedRemote) Fetch(context.Context, string) (model.Snapshot, error) {
	return r.next, nil
}

func (r *scriptedRemote) MarkRead(context.Context, string, string) error { return nil }
func (r *scriptedRemote) MarkAllRead(context.Context, string) error      { return nil }
func (r *scriptedRemote) Delete(context.Context, string, string) error   { return nil }

// The synchronizer must emit exactly what Detect computes against the
// previous snapshot, except on the first fetch.
func TestSynchronizerEmitsAgainstPreviousSnapshot(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		remote := &scriptedRemote{}
		rec := &recorder{}
		s := New(domain.SourceUser, remote, zap.NewNop(), WithCredential("tok"), WithListener(rec))

		var prev []model.Notification
		polls := rapid.IntRange(1, 8).Draw(t, "polls")
		for i := 0; i < polls; i++ {
			items := snapshotGen().Draw(t, "snapshot")
			unread := rapid.IntRange(0, 10).Draw(t, "unread")
			remote.next = model.Snapshot{Notifications: items, UnreadCount: unread}

			before := len(rec.ids())
			s.Fetch(context.Background())
			emitted := rec.ids()[before:]

			var want []model.Notification
			if i > 0 {
				want = Detect(IDs(prev), items)
			}
			if len(want) != len(emitted) {
				t.Fatalf("poll %d: emitted %v, want %d items", i, emitted, len(want))
			}
			for j := range want {
				if want[j].ID != emitted[j] {
					t.Fatalf("poll %d: emitted %v, want %s at %d", i, emitted, want[j].ID, j)
				}
			}

			st := s.State()
			if st.UnreadCount != unread || len(st.Notifications) != len(items) {
				t.Fatalf("poll %d: published state does not match snapshot", i)
			}
			prev = items
		}
	})
}
