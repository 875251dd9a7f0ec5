// Package view builds and renders the guest beer menu page.
package view

import (
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"guest_beer/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.New("menu.html").ParseFS(templatesFS, "templates/menu.html"))

const bannerImageURL = "https://images.unsplash.com/photo-1608225244979-5e74f88b5a75?q=80&w=2070&auto=format&fit=crop"

type Page struct {
	Lang        string
	Title       string
	ToggleLabel string
	ToggleAria  string
	ToggleURL   string
	BannerURL   string
	Updated     string
	Beers       []Beer
	Error       string
	Empty       string
	Footnotes   []string
}

type Fact struct {
	Label string
	Value string
}

type StoreSection struct {
	Heading string
	Stores  []domain.StoreRef
}

type Beer struct {
	ID              int
	Tagline         string
	Title           Title
	Name            string
	Price           Price
	ImageURL        string
	Facts           []Fact
	FeaturesHeading string
	Features        []string
	Notice          string
	Stores          []StoreSection
}

// Build assembles the page for menu. loadErr, when set, replaces the menu
// with a single error message.
func Build(m domain.Menu, loadErr error, lang domain.Language, toggleURL string) Page {
	p := Page{
		Lang:        string(lang),
		Title:       T(lang, "Guest Beer Information"),
		ToggleAria:  T(lang, "Toggle language"),
		ToggleURL:   toggleURL,
		BannerURL:   bannerImageURL,
		ToggleLabel: "ENGLISH",
	}
	if lang == domain.LangEN {
		p.ToggleLabel = "日本語"
	}
	if loadErr != nil {
		p.Error = T(lang, "Failed to load guest beer information.")
		return p
	}
	if m.UpdatedAt != nil {
		p.Updated = FormatUpdated(*m.UpdatedAt, lang)
	}
	if len(m.Beers) == 0 {
		p.Empty = T(lang, "No guest beer information available at the moment.")
		return p
	}
	for _, b := range m.Beers {
		p.Beers = append(p.Beers, buildBeer(b, lang))
	}
	p.Footnotes = []string{
		T(lang, "*Guest beers on sale may vary depending on stock."),
		T(lang, "*For more detailed information, please contact the store directly."),
	}
	return p
}

func buildBeer(b domain.BeerWithStores, lang domain.Language) Beer {
	d := b.Detail
	name := d.Name(lang)
	out := Beer{
		ID:              d.ID,
		Title:           FormatName(name, lang),
		Name:            name,
		Price:           FormatPrice(d, lang),
		ImageURL:        d.ImageURL,
		FeaturesHeading: T(lang, "Features"),
		Notice:          T(lang, "Because quantities are limited, the guest beer on sale may differ.\nPlease contact the store directly for detailed information on which kegs are open."),
	}
	if d.ID == 1 {
		out.Tagline = T(lang, "A special glass you can only drink at \"82 ALE HOUSE\"")
	}

	// optional facts are omitted rather than shown empty
	if d.ABV != "" {
		out.Facts = append(out.Facts, Fact{T(lang, "ABV"), d.ABV})
	}
	if d.Type != "" {
		out.Facts = append(out.Facts, Fact{T(lang, "Type"), d.Type})
	}
	if d.IBU != nil && *d.IBU > 0 {
		out.Facts = append(out.Facts, Fact{"IBU", strconv.Itoa(*d.IBU)})
	}
	if v := d.ProductionArea(lang); v != "" {
		out.Facts = append(out.Facts, Fact{T(lang, "Origin"), v})
	}
	if v := d.Brewery(lang); v != "" {
		out.Facts = append(out.Facts, Fact{T(lang, "Brewery"), v})
	}

	for _, f := range d.Features(lang) {
		out.Features = append(out.Features, CleanFeature(f))
	}

	heading := T(lang, "Available Stores")
	if len(b.Stores82) > 0 {
		out.Stores = append(out.Stores, StoreSection{string(domain.Brand82) + " " + heading, b.Stores82})
	}
	if len(b.StoresHub) > 0 {
		out.Stores = append(out.Stores, StoreSection{string(domain.BrandHUB) + " " + heading, b.StoresHub})
	}
	return out
}

// ToggleURL returns u with its lang query parameter switched to the other
// language; every other parameter is kept.
func ToggleURL(u *url.URL, lang domain.Language) string {
	q := u.Query()
	q.Set("lang", string(lang.Other()))
	out := url.URL{Path: u.Path, RawQuery: q.Encode()}
	if out.Path == "" {
		out.Path = "/"
	}
	return out.String()
}

func Render(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}
