package app

import (
	"cmp"
	"slices"
	"strings"

	"guest_beer/internal/catalog"
	"guest_beer/internal/domain"
)

const maxFeatures = 3

type Normalizer struct {
	cat *catalog.Catalog
}

func NewNormalizer(c *catalog.Catalog) *Normalizer {
	if c == nil {
		c = catalog.Default()
	}
	return &Normalizer{cat: c}
}

// Normalize turns a batch into menu entries for lang, ordered by ID.
// It does not modify b.
func (n *Normalizer) Normalize(b domain.Batch, lang domain.Language) []domain.BeerWithStores {
	out := make([]domain.BeerWithStores, 0, len(b.Records))
	for _, rec := range b.Records {
		bw := n.normalizeRecord(rec, lang)
		if b.DropStoreless && !bw.HasStores() {
			continue
		}
		out = append(out, bw)
	}
	slices.SortStableFunc(out, func(a, b domain.BeerWithStores) int { return cmp.Compare(a.Detail.ID, b.Detail.ID) })
	return out
}

// Menu normalizes b and wraps it with its load metadata.
func (n *Normalizer) Menu(b domain.Batch, lang domain.Language) domain.Menu {
	m := domain.Menu{
		Language: lang,
		Beers:    n.Normalize(b, lang),
		Source:   b.Source,
	}
	if !b.LoadedAt.IsZero() {
		t := b.LoadedAt
		m.UpdatedAt = &t
	}
	return m
}

func (n *Normalizer) normalizeRecord(rec domain.Record, lang domain.Language) domain.BeerWithStores {
	d := rec.Detail
	d.NameEN = n.cat.EnglishName(d.NameJA, d.NameEN)
	d.ImageURL = n.cat.Image(d.NameJA, d.ImageURL)
	d.FeaturesJA = features(d.FeaturesJA)
	d.FeaturesEN = features(d.FeaturesEN)

	s82, hub := ClassifyStores(rec.Stores)
	return domain.BeerWithStores{
		Detail:    d,
		Stores82:  n.display(s82, lang),
		StoresHub: n.display(hub, lang),
	}
}

// display swaps canonical names for display names, keeping order.
func (n *Normalizer) display(stores []domain.StoreRef, lang domain.Language) []domain.StoreRef {
	out := make([]domain.StoreRef, len(stores))
	for i, st := range stores {
		out[i] = domain.StoreRef{Name: n.cat.StoreName(st.Name, lang), URL: st.URL}
	}
	return out
}

func features(in []string) []string {
	out := make([]string, 0, maxFeatures)
	for _, f := range in {
		if strings.TrimSpace(f) == "" {
			continue
		}
		out = append(out, f)
		if len(out) == maxFeatures {
			break
		}
	}
	return out
}
