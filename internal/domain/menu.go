package domain

import "time"

// Record is one beer as read from a source, before normalization.
// Stores carry canonical (source) names.
type Record struct {
	Detail BeerDetail
	Stores []StoreRef
}

// Batch is everything one source load produced.
type Batch struct {
	Records []Record
	// DropStoreless excludes beers that no store carries. Master data sets
	// it, raw records do not.
	DropStoreless bool
	Source        string
	LoadedAt      time.Time
}

// MasterData is the store-name keyed payload (store name -> URL).
type MasterData struct {
	Stores    map[string]string
	Beers     []MasterBeer
	UpdatedAt *time.Time
}

type MasterBeer struct {
	BeerDetail
	AvailableAt []string
}

// Menu is the normalized, language-specific view of one batch.
type Menu struct {
	Language  Language
	Beers     []BeerWithStores
	UpdatedAt *time.Time
	Source    string
}
