package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"guest_beer/internal/domain"
)

// Title is a beer name split around a collaboration mark ("A×B rest").
type Title struct {
	Lead    string
	Sep     string
	Partner string
	Rest    string
	Spaced  bool
}

func (t Title) String() string {
	if t.Sep == "" {
		return t.Lead
	}
	var b strings.Builder
	b.WriteString(t.Lead)
	if t.Spaced {
		b.WriteString(" " + t.Sep + " ")
	} else {
		b.WriteString(t.Sep)
	}
	b.WriteString(t.Partner)
	if t.Rest != "" {
		b.WriteString(" " + t.Rest)
	}
	return b.String()
}

var enCollab = regexp.MustCompile(`(?i)\sx\s`)

// FormatName splits a display name for markup. Japanese names with at
// least three parts around "×" or spaces become "A×B rest"; English names
// split on the first " x ".
func FormatName(name string, lang domain.Language) Title {
	if lang == domain.LangJA {
		parts := strings.FieldsFunc(name, func(r rune) bool { return r == '×' || unicode.IsSpace(r) })
		if len(parts) >= 3 {
			return Title{Lead: parts[0], Sep: "×", Partner: parts[1], Rest: strings.Join(parts[2:], " ")}
		}
	}
	if loc := enCollab.FindStringIndex(name); loc != nil {
		return Title{Lead: name[:loc[0]], Sep: "x", Partner: name[loc[1]:], Spaced: true}
	}
	return Title{Lead: name}
}

type Price struct {
	USPint    string
	HappyHour string // empty when there is no discounted price
	UKHalf    string
}

// String joins the price lines on one line.
func (p Price) String() string {
	s := p.USPint
	if p.HappyHour != "" {
		s += " " + p.HappyHour
	}
	return s + " / " + p.UKHalf
}

func FormatPrice(d domain.BeerDetail, lang domain.Language) Price {
	p := printer(lang)
	out := Price{
		USPint: p.Sprintf("US 1 PINT ¥%d", d.PriceUSPint),
		UKHalf: p.Sprintf("UK 1/2 PINT ¥%d", d.PriceUKHalfPint),
	}
	if d.PriceHappyHour != nil && *d.PriceHappyHour > 0 {
		out.HappyHour = p.Sprintf("(Happy Hour: ¥%d)", *d.PriceHappyHour)
	}
	return out
}

var featureLabels = strings.NewReplacer(
	"香り＝", "", "特徴＝", "", "味わい＝", "",
	"Aroma: ", "", "Characteristics: ", "", "Taste: ", "",
)

// CleanFeature strips the aroma/characteristics/taste labels.
func CleanFeature(s string) string {
	return featureLabels.Replace(s)
}

// FormatUpdated renders the last-updated line.
func FormatUpdated(t time.Time, lang domain.Language) string {
	if lang == domain.LangJA {
		return fmt.Sprintf("%d年%d月%d日 更新", t.Year(), int(t.Month()), t.Day())
	}
	return "Last Updated: " + t.Format("January 2, 2006")
}
