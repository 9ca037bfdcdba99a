package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Болгарские месяцы
var bgMonths = map[string]string{
	"януари":    "01",
	"февруари":  "02",
	"март":      "03",
	"април":     "04",
	"май":       "05",
	"юни":       "06",
	"юли":       "07",
	"август":    "08",
	"септември": "09",
	"октомври":  "10",
	"ноември":   "11",
	"декември":  "12",
}

// dateGrammar: regexp ищет первую подстроку, build переставляет
// компоненты в канонический вид. При ok == false грамматика не подходит, пробуем следующую.
type dateGrammar struct {
	name  string
	re    *regexp.Regexp
	clock bool
	build func(m []string) (canonical string, ok bool)
}

// Порядок важен: "DD.MM.YYYY" является префиксом "DD.MM.YYYY, HH:MM:SS"
var dateGrammars = []dateGrammar{
	{
		name:  "dd.mm.yyyy, hh:mm:ss",
		re:    regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4}),\s*(\d{2}):(\d{2}):(\d{2})`),
		clock: true,
		build: func(m []string) (string, bool) {
			return fmt.Sprintf("%s-%s-%s %s:%s:%s", m[3], pad2(m[2]), pad2(m[1]), m[4], m[5], m[6]), true
		},
	},
	{
		name:  "yyyy-mm-dd hh:mm:ss",
		re:    regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2}):(\d{2})`),
		clock: true,
		build: func(m []string) (string, bool) {
			return fmt.Sprintf("%s-%s-%s %s:%s:%s", m[1], m[2], m[3], m[4], m[5], m[6]), true
		},
	},
	{
		name: "dd.mm.yyyy",
		re:   regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`),
		build: func(m []string) (string, bool) {
			return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[2]), pad2(m[1])), true
		},
	},
	{
		name: "dd <месец> yyyy",
		re:   regexp.MustCompile(`(\d{1,2})\s+(\p{Cyrillic}{3,})\s+(\d{4})`),
		build: func(m []string) (string, bool) {
			month, ok := bgMonths[strings.ToLower(m[2])]
			if !ok {
				return "", false
			}
			return fmt.Sprintf("%s-%s-%s", m[3], month, pad2(m[1])), true
		},
	},
	{
		name: "yyyy-mm-dd",
		re:   regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
		build: func(m []string) (string, bool) {
			return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), true
		},
	},
}

// Normalize переводит сырой текст даты в Timestamp.
// Грамматики пробуются по порядку, побеждает первая совпавшая подстрока.
// Компоненты только переставляются: 31.02.2023 это ошибка, а не 3 марта.
func Normalize(raw string) (Timestamp, error) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	if text == "" {
		return Timestamp{}, NewError(CodeDateParse, "empty date string", nil)
	}

	for _, g := range dateGrammars {
		// первое совпадение может оказаться ложным («3 пъти 2023»), пробуем все
		var (
			m         []string
			canonical string
		)
		for _, cand := range g.re.FindAllStringSubmatch(text, -1) {
			if c, ok := g.build(cand); ok {
				m, canonical = cand, c
				break
			}
		}
		if m == nil {
			continue
		}

		layout := DateLayout
		if g.clock {
			layout = DateTimeLayout
		}
		t, err := time.ParseInLocation(layout, canonical, time.UTC)
		if err != nil {
			return Timestamp{}, NewError(CodeDateParse, fmt.Sprintf("invalid %s date %q", g.name, m[0]), err).
				WithDetail("raw", raw)
		}
		return Timestamp{Time: t, HasClock: g.clock}, nil
	}

	return Timestamp{}, NewError(CodeDateParse, fmt.Sprintf("unable to parse date: %q", text), nil).
		WithDetail("raw", raw)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
