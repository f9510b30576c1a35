package synchronizer

import (
	"sort"

	"notifysync/internal/model"
)

// Detect returns the items of next whose id is absent from seen and that are
// still unread, in the order they appear in next.
func Detect(seen map[string]struct{}, next []model.Notification) []model.Notification {
	var fresh []model.Notification
	for _, n := range next {
		if n.IsRead {
			continue
		}
		if _, ok := seen[n.ID]; ok {
			continue
		}
		fresh = append(fresh, n)
	}
	return fresh
}

// IDs builds the seen-set of one snapshot.
func IDs(items []model.Notification) map[string]struct{} {
	ids := make(map[string]struct{}, len(items))
	for _, n := range items {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// SortNewestFirst orders items by CreatedAt descending. Equal timestamps are
// ordered by id so that the result does not depend on backend order.
func SortNewestFirst(items []model.Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
