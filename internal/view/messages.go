package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"guest_beer/internal/domain"
)

// English keys double as the English text.
var jaMessages = map[string]string{
	"US 1 PINT ¥%d":          "US1PINTグラス＝%d円",
	"UK 1/2 PINT ¥%d":        "UK1/2PINTグラス＝%d円",
	"(Happy Hour: ¥%d)":      "（ハッピーアワー＝%d円）",
	"ABV":                    "アルコール度数",
	"Type":                   "タイプ",
	"Origin":                 "生産地",
	"Brewery":                "製造所",
	"Features":               "特徴",
	"Available Stores":       "取り扱い店舗のご案内",
	"Toggle language":        "言語を切り替える",
	"Guest Beer Information": "ゲストビールのご案内",
	"A special glass you can only drink at \"82 ALE HOUSE\"": "『82ALEHOUSE』でしか飲めない限定の1杯をあなたに",
	"Because quantities are limited, the guest beer on sale may differ.\nPlease contact the store directly for detailed information on which kegs are open.": "数量限定の為、販売しているゲストビールが異なる場合も御座います。\n詳しい樽の開栓情報は店舗までお問い合わせください。",
	"*Guest beers on sale may vary depending on stock.":                  "※在庫状況により、販売しているゲストビールは異なります。",
	"*For more detailed information, please contact the store directly.": "※より詳細な情報を知りたい方は直接店舗までお問合せ下さい。",
	"No guest beer information available at the moment.":                 "現在ご案内できるゲストビール情報はありません。",
	"Failed to load guest beer information.":                             "ゲストビール情報を取得できませんでした。",
}

func init() {
	for key, msg := range jaMessages {
		if err := message.SetString(language.Japanese, key, msg); err != nil {
			panic(err)
		}
	}
}

func printer(lang domain.Language) *message.Printer {
	if lang == domain.LangJA {
		return message.NewPrinter(language.Japanese)
	}
	return message.NewPrinter(language.English)
}

// T returns the localized text for an English key.
func T(lang domain.Language, key string) string {
	return printer(lang).Sprintf(key)
}
