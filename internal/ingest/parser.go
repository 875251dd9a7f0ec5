// Package ingest turns the two accepted menu payload shapes into a
// domain.Batch: raw Japanese-labelled records, and store-keyed master data.
package ingest

import (
	"fmt"

	"guest_beer/internal/domain"
)

const (
	ShapeAuto   = "auto"
	ShapeRaw    = "raw"
	ShapeMaster = "master"
)

type Parser interface {
	Parse(data []byte, source string) (domain.Batch, error)
	Shape() string
}

// ForShape returns the parser for a configured shape name.
func ForShape(shape string) (Parser, error) {
	switch shape {
	case "", ShapeAuto:
		return AutoParser{}, nil
	case ShapeRaw:
		return RawRecordParser{}, nil
	case ShapeMaster:
		return MasterDataParser{}, nil
	}
	return nil, fmt.Errorf("unknown menu data shape %q", shape)
}

// AutoParser picks the shape from the top-level JSON value: an array is
// raw records, an object is master data.
type AutoParser struct{}

func (AutoParser) Shape() string { return ShapeAuto }

func (AutoParser) Parse(data []byte, source string) (domain.Batch, error) {
	p, err := Detect(data)
	if err != nil {
		return domain.Batch{}, err
	}
	return p.Parse(data, source)
}

func Detect(data []byte) (Parser, error) {
	switch first(trimBOM(data)) {
	case '[':
		return RawRecordParser{}, nil
	case '{':
		return MasterDataParser{}, nil
	}
	return nil, fmt.Errorf("%w: expected JSON array or object", domain.ErrMalformedPayload)
}
