package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"municipal-updates/internal/config"
)

var (
	inlineSpaces = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

type Normalizer struct {
	cfg config.NormalizeConfig
}

func NewNormalizer(cfg config.NormalizeConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// CleanText чистит извлечённый текст, сохраняя переводы строк (контент показывается как pre-line)
func (n *Normalizer) CleanText(text string) string {
	if n.cfg.TrimNBSP {
		// Заменяем NBSP (\u00a0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00a0", " ")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if n.cfg.CollapseSpaces {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimSpace(inlineSpaces.ReplaceAllString(line, " "))
		}
		text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	}

	return strings.TrimSpace(text)
}

// Truncate обрезает по символам (рунам), а не байтам: тексты кириллические
func Truncate(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return strings.TrimSpace(string(runes[:maxChars]))
}

// NormalizeURL резолвит относительную ссылку от базы и убирает якорь
func NormalizeURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if b, err := url.Parse(base); err == nil && !u.IsAbs() {
		u = b.ResolveReference(u)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
