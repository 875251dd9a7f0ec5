package domain

import "strings"

type Language string

const (
	LangJA Language = "ja"
	LangEN Language = "en"
)

// ParseLanguage accepts "ja" or "en" exactly; anything else yields def.
func ParseLanguage(s string, def Language) Language {
	switch Language(s) {
	case LangJA, LangEN:
		return Language(s)
	}
	return def
}

// Other returns the language the toggle switches to.
func (l Language) Other() Language {
	if l == LangEN {
		return LangJA
	}
	return LangEN
}

type BeerDetail struct {
	ID               int
	NameJA           string
	NameEN           string
	Type             string
	ABV              string // "5.5%" or ""
	IBU              *int
	PriceUSPint      int
	PriceUKHalfPint  int
	PriceHappyHour   *int
	ProductionAreaJA string
	ProductionAreaEN string
	BreweryJA        string
	BreweryEN        string
	FeaturesJA       []string
	FeaturesEN       []string
	ImageURL         string
}

// Name returns the display name for lang.
func (b BeerDetail) Name(lang Language) string {
	if lang == LangEN && b.NameEN != "" {
		return b.NameEN
	}
	return b.NameJA
}

func (b BeerDetail) ProductionArea(lang Language) string {
	if lang == LangEN {
		return b.ProductionAreaEN
	}
	return b.ProductionAreaJA
}

func (b BeerDetail) Brewery(lang Language) string {
	if lang == LangEN {
		return b.BreweryEN
	}
	return b.BreweryJA
}

func (b BeerDetail) Features(lang Language) []string {
	if lang == LangEN {
		return b.FeaturesEN
	}
	return b.FeaturesJA
}

type StoreRef struct {
	Name string
	URL  string
}

// Brand of a store, decided by its canonical name only.
type Brand string

const (
	Brand82  Brand = "82"
	BrandHUB Brand = "HUB"
)

// BrandOf returns Brand82 when the name contains "82" in half-width or
// full-width digits, BrandHUB otherwise.
func BrandOf(name string) Brand {
	if strings.Contains(name, "82") || strings.Contains(name, "８２") {
		return Brand82
	}
	return BrandHUB
}

type BeerWithStores struct {
	Detail    BeerDetail
	Stores82  []StoreRef
	StoresHub []StoreRef
}

// HasStores reports whether at least one store carries the beer.
func (b BeerWithStores) HasStores() bool {
	return len(b.Stores82) > 0 || len(b.StoresHub) > 0
}

// Languages lists every supported display language.
var Languages = []Language{LangJA, LangEN}
