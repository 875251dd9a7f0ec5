package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"guest_beer/internal/domain"
)

// Field labels of the raw-record payload. Older exports spell the half
// pint price without the leading "1".
var rawAliases = map[string][]string{
	"order":       {"順番"},
	"name":        {"販売ゲストビール"},
	"image":       {"画像URL"},
	"price_us":    {"USPINTグラス価格"},
	"price_happy": {"ハッピー価格"},
	"price_uk":    {"UK1/2PINTグラス価格", "UK/2PINTグラス価格"},
	"abv":         {"アルコール度数"},
	"type":        {"タイプ"},
	"ibu":         {"IBU"},
	"area":        {"生産地"},
	"brewery":     {"製造所"},
	"features":    {"特徴1", "特徴2", "特徴3"},
	"stores":      {"販売店舗"},
}

var rawStoreAliases = map[string][]string{
	"name": {"店舗名"},
	"url":  {"店舗URL"},
}

// RawRecordParser reads a top-level array of records keyed by Japanese
// labels, each embedding its own store list. Beers without stores are kept.
type RawRecordParser struct{}

func (RawRecordParser) Shape() string { return ShapeRaw }

func (p RawRecordParser) Parse(data []byte, source string) (domain.Batch, error) {
	var rows []any
	if err := json.Unmarshal(trimBOM(data), &rows); err != nil {
		return domain.Batch{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	recs := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			return domain.Batch{}, fmt.Errorf("%w: row %d is %T, want object", domain.ErrMalformedRecord, i, row)
		}
		rec, err := mapRawRecord(m)
		if err != nil {
			return domain.Batch{}, fmt.Errorf("row %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return domain.Batch{
		Records:       recs,
		DropStoreless: false,
		Source:        source,
		LoadedAt:      time.Now(),
	}, nil
}

// rawInts reads the integer fields of a record; an out-of-range number
// fails the record.
func rawInts(m map[string]any, keys ...string) (map[string]*int64, error) {
	out := make(map[string]*int64, len(keys))
	for _, k := range keys {
		v, err := firstInt64Flexible(m, rawAliases[k]...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedRecord, rawAliases[k][0], err)
		}
		out[k] = v
	}
	return out, nil
}

func mapRawRecord(m map[string]any) (domain.Record, error) {
	ints, err := rawInts(m, "order", "price_us", "price_uk", "price_happy", "ibu")
	if err != nil {
		return domain.Record{}, err
	}
	order := ints["order"]
	if order == nil {
		return domain.Record{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedRecord, rawAliases["order"][0])
	}
	name := firstNonEmptyAlias(m, rawAliases, "name")
	if name == "" {
		return domain.Record{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedRecord, rawAliases["name"][0])
	}

	var features []string
	for _, k := range rawAliases["features"] {
		features = append(features, lookupStr(m, k))
	}

	d := domain.BeerDetail{
		ID:               int(*order),
		NameJA:           name,
		Type:             firstNonEmptyAlias(m, rawAliases, "type"),
		ABV:              formatABV(firstAnyAlias(m, rawAliases, "abv")),
		PriceUSPint:      intOrZero(ints["price_us"]),
		PriceUKHalfPint:  intOrZero(ints["price_uk"]),
		PriceHappyHour:   positiveInt(ints["price_happy"]),
		ProductionAreaJA: firstNonEmptyAlias(m, rawAliases, "area"),
		BreweryJA:        firstNonEmptyAlias(m, rawAliases, "brewery"),
		FeaturesJA:       nonEmpty(features...),
		ImageURL:         firstNonEmptyAlias(m, rawAliases, "image"),
	}
	if ibu := ints["ibu"]; ibu != nil && *ibu >= 0 {
		x := int(*ibu)
		d.IBU = &x
	}

	stores, err := mapRawStores(firstAnyAlias(m, rawAliases, "stores"))
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{Detail: d, Stores: stores}, nil
}

func mapRawStores(v any) ([]domain.StoreRef, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: store list is %T, want array", domain.ErrMalformedRecord, v)
	}
	out := make([]domain.StoreRef, 0, len(list))
	for _, it := range list {
		sm, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: store entry is %T, want object", domain.ErrMalformedRecord, it)
		}
		name, ok := firstAnyAlias(sm, rawStoreAliases, "name").(string)
		if !ok {
			return nil, fmt.Errorf("%w: store entry without %s", domain.ErrMalformedRecord, rawStoreAliases["name"][0])
		}
		out = append(out, domain.StoreRef{
			Name: name,
			URL:  firstNonEmptyAlias(sm, rawStoreAliases, "url"),
		})
	}
	return out, nil
}
