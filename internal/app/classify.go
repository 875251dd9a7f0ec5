package app

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"guest_beer/internal/domain"
)

// ClassifyStores partitions stores into the 82 and HUB brands by their
// canonical name and sorts each list in Japanese collation order. Every
// input store lands in exactly one list; equal keys keep input order.
func ClassifyStores(stores []domain.StoreRef) (s82, hub []domain.StoreRef) {
	s82 = make([]domain.StoreRef, 0, len(stores))
	hub = make([]domain.StoreRef, 0, len(stores))
	for _, st := range stores {
		if domain.BrandOf(st.Name) == domain.Brand82 {
			s82 = append(s82, st)
		} else {
			hub = append(hub, st)
		}
	}
	// a Collator is not safe for concurrent use
	col := collate.New(language.Japanese)
	byName := func(a, b domain.StoreRef) int { return col.CompareString(a.Name, b.Name) }
	slices.SortStableFunc(s82, byName)
	slices.SortStableFunc(hub, byName)
	return s82, hub
}
