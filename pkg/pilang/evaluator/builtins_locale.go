package evaluator

import (
	"strings"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// builtinNumfmt renders a number with locale-appropriate grouping and
// decimal separators. The optional second argument overrides the session
// locale.
func builtinNumFmt(scope *Scope, args []Object) (Object, *perrors.PiError) {
	value, err := numberValue(args[0])
	if err != nil {
		return nil, err
	}

	localeName := scope.Locale
	if len(args) == 2 {
		localeName, err = stringArg(args[1])
		if err != nil {
			return nil, err
		}
	}

	// language.Parse wants BCP 47 hyphens, locale names use underscores.
	tag, tagErr := language.Parse(strings.ReplaceAll(localeName, "_", "-"))
	if tagErr != nil {
		return nil, perrors.New("FMT-0002", map[string]any{"Locale": localeName})
	}

	p := message.NewPrinter(tag)
	return &String{Value: p.Sprintf("%v", number.Decimal(value))}, nil
}

// mondayLocale maps a locale name like en_US or fr-FR to a monday.Locale.
// Lookup falls back to the bare language when the full form is unknown.
func mondayLocale(name string) (monday.Locale, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(name, "-", "_"))

	if loc, ok := mondayLocales[normalized]; ok {
		return loc, true
	}
	if lang, _, found := strings.Cut(normalized, "_"); found {
		if loc, ok := mondayLocales[lang]; ok {
			return loc, true
		}
	}
	return monday.LocaleEnUS, false
}

var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"ru":    monday.LocaleRuRU,
	"ru_ru": monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"pl_pl": monday.LocalePlPL,
	"da":    monday.LocaleDaDK,
	"da_dk": monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"fi_fi": monday.LocaleFiFI,
	"sv":    monday.LocaleSvSE,
	"sv_se": monday.LocaleSvSE,
	"nb":    monday.LocaleNbNO,
	"nb_no": monday.LocaleNbNO,
	"ja":    monday.LocaleJaJP,
	"ja_jp": monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
	"ko_kr": monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"tr_tr": monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
	"uk_ua": monday.LocaleUkUA,
	"cs":    monday.LocaleCsCZ,
	"cs_cz": monday.LocaleCsCZ,
}

// styleLayout returns the Go layout for a named style, varying order and
// punctuation by locale the way native speakers write dates. Unknown
// styles report false so callers can treat the string as a raw layout.
func styleLayout(style string, locale monday.Locale) (string, bool) {
	switch style {
	case "short":
		switch locale {
		case monday.LocaleEnUS:
			return "1/2/06", true
		case monday.LocaleDeDE:
			return "02.01.06", true
		case monday.LocaleJaJP, monday.LocaleZhCN, monday.LocaleZhTW:
			return "06/01/02", true
		default:
			return "02/01/06", true
		}
	case "medium":
		switch locale {
		case monday.LocaleEnUS:
			return "Jan 2, 2006", true
		case monday.LocaleDeDE:
			return "2. Jan. 2006", true
		case monday.LocaleJaJP, monday.LocaleZhCN, monday.LocaleZhTW:
			return "2006年1月2日", true
		case monday.LocaleKoKR:
			return "2006년 1월 2일", true
		default:
			return "2 Jan 2006", true
		}
	case "long":
		switch locale {
		case monday.LocaleEnUS:
			return "January 2, 2006", true
		case monday.LocaleDeDE:
			return "2. January 2006", true
		case monday.LocaleJaJP, monday.LocaleZhCN, monday.LocaleZhTW:
			return "2006年1月2日", true
		case monday.LocaleKoKR:
			return "2006년 1월 2일", true
		default:
			return "2 January 2006", true
		}
	case "full":
		switch locale {
		case monday.LocaleEnUS:
			return "Monday, January 2, 2006", true
		case monday.LocaleDeDE:
			return "Monday, 2. January 2006", true
		case monday.LocaleJaJP, monday.LocaleZhCN, monday.LocaleZhTW:
			return "2006年1月2日 Monday", true
		default:
			return "Monday, 2 January 2006", true
		}
	}
	return "", false
}
