package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"guest_beer/internal/domain"
)

// masterDoc is the wire form of the master-data payload.
type masterDoc struct {
	Stores    map[string]string `json:"stores"`
	Beers     []masterBeerDoc   `json:"beers"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

type masterBeerDoc struct {
	ID                   int      `json:"id"`
	NameJA               string   `json:"name_ja"`
	NameEN               string   `json:"name_en"`
	Type                 string   `json:"type"`
	ABV                  any      `json:"abv"` // number or string
	IBU                  *int     `json:"ibu"`
	PriceUSPint          int      `json:"price_us_pint"`
	PriceUSPintHappyHour *int     `json:"price_us_pint_happy_hour"`
	PriceHappyHour       *int     `json:"price_happy_hour"`
	PriceUKHalfPint      int      `json:"price_uk_half_pint"`
	ProductionAreaJA     string   `json:"production_area_ja"`
	ProductionAreaEN     string   `json:"production_area_en"`
	BreweryJA            string   `json:"brewery_ja"`
	BreweryEN            string   `json:"brewery_en"`
	FeaturesJA           []string `json:"features_ja"`
	FeaturesEN           []string `json:"features_en"`
	ImageURL             string   `json:"image_url"`
	AvailableAt          []string `json:"available_at"`
}

// DecodeMasterData parses a master-data object.
func DecodeMasterData(data []byte) (domain.MasterData, error) {
	data = trimBOM(data)
	if first(data) != '{' {
		return domain.MasterData{}, fmt.Errorf("%w: master data must be a JSON object", domain.ErrMalformedPayload)
	}
	var doc masterDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.MasterData{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	md := domain.MasterData{
		Stores:    doc.Stores,
		Beers:     make([]domain.MasterBeer, 0, len(doc.Beers)),
		UpdatedAt: doc.UpdatedAt,
	}
	if md.Stores == nil {
		md.Stores = map[string]string{}
	}
	for _, b := range doc.Beers {
		happy := b.PriceUSPintHappyHour
		if happy == nil {
			happy = b.PriceHappyHour
		}
		if happy != nil && *happy <= 0 {
			happy = nil
		}
		ibu := b.IBU
		if ibu != nil && *ibu < 0 {
			ibu = nil
		}
		md.Beers = append(md.Beers, domain.MasterBeer{
			BeerDetail: domain.BeerDetail{
				ID:               b.ID,
				NameJA:           b.NameJA,
				NameEN:           b.NameEN,
				Type:             b.Type,
				ABV:              formatABV(b.ABV),
				IBU:              ibu,
				PriceUSPint:      b.PriceUSPint,
				PriceUKHalfPint:  b.PriceUKHalfPint,
				PriceHappyHour:   happy,
				ProductionAreaJA: b.ProductionAreaJA,
				ProductionAreaEN: b.ProductionAreaEN,
				BreweryJA:        b.BreweryJA,
				BreweryEN:        b.BreweryEN,
				FeaturesJA:       b.FeaturesJA,
				FeaturesEN:       b.FeaturesEN,
				ImageURL:         b.ImageURL,
			},
			AvailableAt: b.AvailableAt,
		})
	}
	return md, nil
}

// FromMasterData resolves each beer's store names against the store map.
// Names without a URL are dropped, and so are beers left with no store.
func FromMasterData(md domain.MasterData, source string) domain.Batch {
	recs := make([]domain.Record, 0, len(md.Beers))
	for _, b := range md.Beers {
		stores := make([]domain.StoreRef, 0, len(b.AvailableAt))
		for _, name := range b.AvailableAt {
			url := md.Stores[name]
			if url == "" {
				continue
			}
			stores = append(stores, domain.StoreRef{Name: name, URL: url})
		}
		recs = append(recs, domain.Record{Detail: b.BeerDetail, Stores: stores})
	}
	loaded := time.Now()
	if md.UpdatedAt != nil {
		loaded = *md.UpdatedAt
	}
	return domain.Batch{
		Records:       recs,
		DropStoreless: true,
		Source:        source,
		LoadedAt:      loaded,
	}
}

// MasterDataParser reads the {stores, beers} object shape.
type MasterDataParser struct{}

func (MasterDataParser) Shape() string { return ShapeMaster }

func (MasterDataParser) Parse(data []byte, source string) (domain.Batch, error) {
	md, err := DecodeMasterData(data)
	if err != nil {
		return domain.Batch{}, err
	}
	return FromMasterData(md, source), nil
}

func trimBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
}

// first returns the first non-space byte of b, or 0.
func first(b []byte) byte {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
