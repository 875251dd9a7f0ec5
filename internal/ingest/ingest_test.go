package ingest_test

import (
	"errors"
	"testing"

	"guest_beer/internal/domain"
	"guest_beer/internal/ingest"
)

const rawPayload = `[
  {
    "順番": 2,
    "販売ゲストビール": "パンクＩＰＡ",
    "画像URL": "",
    "USPINTグラス価格": 1100,
    "ハッピー価格": 800,
    "UK1/2PINTグラス価格": 750,
    "アルコール度数": 5.6,
    "タイプ": "IPA",
    "IBU": 35,
    "生産地": "スコットランド",
    "製造所": "ブリュードッグ",
    "特徴1": "香り＝グレープフルーツ",
    "特徴2": "",
    "特徴3": "味わい＝ドライ",
    "販売店舗": [
      {"店舗名": "HUB川口店", "店舗URL": "https://example.com/kawaguchi"},
      {"店舗名": "８２神田店", "店舗URL": "https://example.com/kanda"}
    ]
  },
  {
    "順番": 1,
    "販売ゲストビール": "ギネス",
    "USPINTグラス価格": 900,
    "UK/2PINTグラス価格": 600,
    "アルコール度数": "4.5",
    "販売店舗": []
  }
]`

func TestRawRecordParser_MapsLabels(t *testing.T) {
	b, err := ingest.RawRecordParser{}.Parse([]byte(rawPayload), "file")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.DropStoreless {
		t.Fatalf("raw records must keep store-less beers")
	}
	if len(b.Records) != 2 {
		t.Fatalf("want 2 records, got %d", len(b.Records))
	}

	punk := b.Records[0].Detail
	if punk.ID != 2 || punk.NameJA != "パンクＩＰＡ" || punk.Type != "IPA" {
		t.Fatalf("unexpected detail: %+v", punk)
	}
	if punk.ABV != "5.6%" {
		t.Fatalf("abv: %q", punk.ABV)
	}
	if punk.PriceUSPint != 1100 || punk.PriceUKHalfPint != 750 {
		t.Fatalf("prices: %+v", punk)
	}
	if punk.PriceHappyHour == nil || *punk.PriceHappyHour != 800 {
		t.Fatalf("happy hour: %v", punk.PriceHappyHour)
	}
	if punk.IBU == nil || *punk.IBU != 35 {
		t.Fatalf("ibu: %v", punk.IBU)
	}
	if len(punk.FeaturesJA) != 2 || punk.FeaturesJA[1] != "味わい＝ドライ" {
		t.Fatalf("features: %#v", punk.FeaturesJA)
	}
	if len(b.Records[0].Stores) != 2 || b.Records[0].Stores[1].Name != "８２神田店" {
		t.Fatalf("stores: %+v", b.Records[0].Stores)
	}

	guinness := b.Records[1].Detail
	if guinness.PriceUKHalfPint != 600 {
		t.Fatalf("legacy half pint label not read: %+v", guinness)
	}
	if guinness.ABV != "4.5%" {
		t.Fatalf("string abv: %q", guinness.ABV)
	}
	if guinness.PriceHappyHour != nil || guinness.IBU != nil {
		t.Fatalf("optional fields should be absent: %+v", guinness)
	}
}

func TestRawRecordParser_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `[{`,
		"object":          `{"a":1}`,
		"row not object":  `[1]`,
		"missing order":   `[{"販売ゲストビール":"ギネス"}]`,
		"missing name":    `[{"順番":1}]`,
		"stores not list": `[{"順番":1,"販売ゲストビール":"ギネス","販売店舗":"x"}]`,
		"store no name":   `[{"順番":1,"販売ゲストビール":"ギネス","販売店舗":[{"店舗URL":"u"}]}]`,
	}
	for name, in := range cases {
		_, err := ingest.RawRecordParser{}.Parse([]byte(in), "file")
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, domain.ErrMalformedPayload) && !errors.Is(err, domain.ErrMalformedRecord) {
			t.Fatalf("%s: unexpected error kind: %v", name, err)
		}
	}
}

func TestRawRecordParser_RejectsOutOfRangeNumbers(t *testing.T) {
	cases := map[string]string{
		"order":      `[{"順番":1e30,"販売ゲストビール":"ギネス"}]`,
		"order 2^63": `[{"順番":9223372036854775808,"販売ゲストビール":"ギネス"}]`,
		"negative":   `[{"順番":-1e19,"販売ゲストビール":"ギネス"}]`,
		"price":      `[{"順番":1,"販売ゲストビール":"ギネス","USPINTグラス価格":1e300}]`,
	}
	for name, in := range cases {
		_, err := ingest.RawRecordParser{}.Parse([]byte(in), "file")
		if !errors.Is(err, domain.ErrMalformedRecord) {
			t.Fatalf("%s: expected ErrMalformedRecord, got %v", name, err)
		}
	}

	// the largest magnitudes a float64 can carry exactly still parse
	b, err := ingest.RawRecordParser{}.Parse([]byte(`[{"順番":-9223372036854775808,"販売ゲストビール":"ギネス"}]`), "file")
	if err != nil || len(b.Records) != 1 {
		t.Fatalf("min int64 order: %v %+v", err, b)
	}
}

const masterPayload = `{
  "stores": {
    "８２神田店": "https://example.com/kanda",
    "HUB藤沢店": "https://example.com/fujisawa",
    "HUB川口店": ""
  },
  "beers": [
    {"id": 1, "name_ja": "ギネス", "name_en": "", "price_us_pint": 900, "price_uk_half_pint": 600,
     "available_at": ["HUB川口店", "閉店した店"]},
    {"id": 2, "name_ja": "パンクＩＰＡ", "name_en": "Punk IPA", "abv": "5.6%", "ibu": 35,
     "price_us_pint": 1100, "price_us_pint_happy_hour": 800, "price_uk_half_pint": 750,
     "features_ja": ["香り＝柑橘"], "features_en": ["Aroma: citrus"],
     "available_at": ["HUB藤沢店", "８２神田店"]},
    {"id": 3, "name_ja": "よなよなエール", "abv": 5.5, "price_happy_hour": 700,
     "price_us_pint": 1000, "price_uk_half_pint": 700, "available_at": ["８２神田店"]}
  ]
}`

func TestMasterDataParser_ResolvesStores(t *testing.T) {
	b, err := ingest.MasterDataParser{}.Parse([]byte(masterPayload), "remote")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !b.DropStoreless {
		t.Fatalf("master data must drop store-less beers")
	}
	if len(b.Records) != 3 {
		t.Fatalf("records: %d", len(b.Records))
	}
	// empty URL and unknown store are both dropped
	if n := len(b.Records[0].Stores); n != 0 {
		t.Fatalf("want no stores for beer 1, got %d", n)
	}
	if n := len(b.Records[1].Stores); n != 2 {
		t.Fatalf("want 2 stores for beer 2, got %d", n)
	}
	if hh := b.Records[1].Detail.PriceHappyHour; hh == nil || *hh != 800 {
		t.Fatalf("happy hour: %v", hh)
	}
	if abv := b.Records[0].Detail.ABV; abv != "" {
		t.Fatalf("absent abv: %q", abv)
	}
	if abv := b.Records[1].Detail.ABV; abv != "5.6%" {
		t.Fatalf("string abv: %q", abv)
	}
	yona := b.Records[2].Detail
	if yona.ABV != "5.5%" {
		t.Fatalf("numeric abv: %q", yona.ABV)
	}
	if yona.PriceHappyHour == nil || *yona.PriceHappyHour != 700 {
		t.Fatalf("price_happy_hour alias not read: %v", yona.PriceHappyHour)
	}
}

func TestDecodeMasterData_IgnoresObjectABV(t *testing.T) {
	md, err := ingest.DecodeMasterData([]byte(`{"beers":[{"id":1,"name_ja":"ギネス","abv":{"v":5}}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if md.Beers[0].ABV != "" {
		t.Fatalf("object abv should be dropped, got %q", md.Beers[0].ABV)
	}
}

func TestDecodeMasterData_RejectsArray(t *testing.T) {
	_, err := ingest.DecodeMasterData([]byte(`[]`))
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	p, err := ingest.Detect([]byte("\xef\xbb\xbf  [ ]"))
	if err != nil || p.Shape() != ingest.ShapeRaw {
		t.Fatalf("array: %v %v", p, err)
	}
	p, err = ingest.Detect([]byte("\n{}"))
	if err != nil || p.Shape() != ingest.ShapeMaster {
		t.Fatalf("object: %v %v", p, err)
	}
	if _, err := ingest.Detect([]byte("null")); !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("null: %v", err)
	}
}

func TestAutoParser(t *testing.T) {
	b, err := ingest.AutoParser{}.Parse([]byte(masterPayload), "file")
	if err != nil || !b.DropStoreless {
		t.Fatalf("auto master: %v %+v", err, b.DropStoreless)
	}
	b, err = ingest.AutoParser{}.Parse([]byte(rawPayload), "file")
	if err != nil || b.DropStoreless {
		t.Fatalf("auto raw: %v %+v", err, b.DropStoreless)
	}
}

func TestForShape(t *testing.T) {
	for _, s := range []string{"", "auto", "raw", "master"} {
		if _, err := ingest.ForShape(s); err != nil {
			t.Fatalf("%q: %v", s, err)
		}
	}
	if _, err := ingest.ForShape("csv"); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}
