// Package catalog holds the static lookup tables used to localize the
// menu: English beer names, fallback images and English store names.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"guest_beer/internal/domain"
)

//go:embed catalog.yaml
var embedded []byte

type ImageKeyword struct {
	Keyword string `yaml:"keyword"`
	URL     string `yaml:"url"`
}

type Catalog struct {
	PlaceholderImage string            `yaml:"placeholder_image"`
	BeerNames        map[string]string `yaml:"beer_names"`
	ImageKeywords    []ImageKeyword    `yaml:"image_keywords"`
	StoreNames       map[string]string `yaml:"store_names"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog.yaml: %v", err))
	}
	return c
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	log.Info().Str("path", path).
		Int("beer_names", len(c.BeerNames)).
		Int("store_names", len(c.StoreNames)).
		Msg("catalog loaded")
	return c, nil
}

func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if c.BeerNames == nil {
		c.BeerNames = map[string]string{}
	}
	if c.StoreNames == nil {
		c.StoreNames = map[string]string{}
	}
	return &c, nil
}

// EnglishName returns explicit when set, else the table entry for ja,
// else ja itself. No transliteration is attempted.
func (c *Catalog) EnglishName(ja, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if en, ok := c.BeerNames[ja]; ok && en != "" {
		return en
	}
	return ja
}

// Image resolves explicit URL -> keyword match on the Japanese name ->
// placeholder.
func (c *Catalog) Image(ja, explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, k := range c.ImageKeywords {
		if k.Keyword != "" && strings.Contains(ja, k.Keyword) {
			return k.URL
		}
	}
	return c.PlaceholderImage
}

// StoreName returns the display name of a store in lang. The result is
// cosmetic only; classification and ordering use the canonical name.
func (c *Catalog) StoreName(name string, lang domain.Language) string {
	if lang != domain.LangEN {
		return name
	}
	if en, ok := c.StoreNames[name]; ok && en != "" {
		return en
	}
	out := name
	if strings.HasSuffix(out, "店") {
		out = strings.TrimSuffix(out, "店") + " branch"
	}
	return strings.Replace(out, "８２", "82", 1)
}
