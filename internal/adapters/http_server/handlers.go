package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"guest_beer/internal/app"
	"guest_beer/internal/domain"
	"guest_beer/internal/view"
)

type Handlers struct {
	Menu        *app.MenuService
	DefaultLang domain.Language
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.page)
	s.mux.Get("/v1/menu", h.menuJSON)
}

func (h *Handlers) lang(r *http.Request) domain.Language {
	def := h.DefaultLang
	if def == "" {
		def = domain.LangJA
	}
	return domain.ParseLanguage(r.URL.Query().Get("lang"), def)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// etagOf hashes a response body into a weak ETag.
func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// writeCached writes body with its ETag, or 304 when the client has it.
func writeCached(w http.ResponseWriter, r *http.Request, contentType string, lang domain.Language, body []byte) {
	etag := etagOf(body)
	w.Header().Set("Vary", "Accept-Encoding")
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", string(lang))
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	menu, err := h.Menu.Menu(r.Context(), lang)
	if err != nil {
		log.Warn().Err(err).Str("lang", string(lang)).Msg("menu unavailable")
	}

	var buf bytes.Buffer
	if rerr := view.Render(&buf, view.Build(menu, err, lang, view.ToggleURL(r.URL, lang))); rerr != nil {
		log.Error().Err(rerr).Msg("render menu page failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Language", string(lang))
		w.WriteHeader(statusFor(err))
		_, _ = w.Write(buf.Bytes())
		return
	}
	writeCached(w, r, "text/html; charset=utf-8", lang, buf.Bytes())
}

func (h *Handlers) menuJSON(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	menu, err := h.Menu.Menu(r.Context(), lang)
	if err != nil {
		writeProblem(w, statusFor(err), "Menu Unavailable", view.T(lang, "Failed to load guest beer information."))
		return
	}
	body, err := json.Marshal(toMenuResponse(menu, lang))
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal menu")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeCached(w, r, "application/json", lang, body)
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrSourceUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusServiceUnavailable
}

type storeDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type beerDTO struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	NameJA          string     `json:"name_ja"`
	NameEN          string     `json:"name_en"`
	Type            string     `json:"type,omitempty"`
	ABV             string     `json:"abv,omitempty"`
	IBU             *int       `json:"ibu,omitempty"`
	PriceUSPint     int        `json:"price_us_pint"`
	PriceUKHalfPint int        `json:"price_uk_half_pint"`
	PriceHappyHour  *int       `json:"price_happy_hour,omitempty"`
	PriceText       string     `json:"price_text"`
	ProductionArea  string     `json:"production_area,omitempty"`
	Brewery         string     `json:"brewery,omitempty"`
	Features        []string   `json:"features"`
	ImageURL        string     `json:"image_url"`
	Stores82        []storeDTO `json:"stores_82"`
	StoresHub       []storeDTO `json:"stores_hub"`
}

type menuResponse struct {
	Language  string     `json:"language"`
	Source    string     `json:"source"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Beers     []beerDTO  `json:"beers"`
}

func toStores(in []domain.StoreRef) []storeDTO {
	out := make([]storeDTO, 0, len(in))
	for _, s := range in {
		out = append(out, storeDTO{Name: s.Name, URL: s.URL})
	}
	return out
}

func toMenuResponse(m domain.Menu, lang domain.Language) menuResponse {
	out := menuResponse{
		Language:  string(lang),
		Source:    m.Source,
		UpdatedAt: m.UpdatedAt,
		Beers:     make([]beerDTO, 0, len(m.Beers)),
	}
	for _, b := range m.Beers {
		d := b.Detail
		features := make([]string, 0, len(d.Features(lang)))
		for _, f := range d.Features(lang) {
			features = append(features, view.CleanFeature(f))
		}
		out.Beers = append(out.Beers, beerDTO{
			ID:              d.ID,
			Name:            d.Name(lang),
			NameJA:          d.NameJA,
			NameEN:          d.NameEN,
			Type:            d.Type,
			ABV:             d.ABV,
			IBU:             d.IBU,
			PriceUSPint:     d.PriceUSPint,
			PriceUKHalfPint: d.PriceUKHalfPint,
			PriceHappyHour:  d.PriceHappyHour,
			PriceText:       view.FormatPrice(d, lang).String(),
			ProductionArea:  d.ProductionArea(lang),
			Brewery:         d.Brewery(lang),
			Features:        features,
			ImageURL:        d.ImageURL,
			Stores82:        toStores(b.Stores82),
			StoresHub:       toStores(b.StoresHub),
		})
	}
	return out
}
