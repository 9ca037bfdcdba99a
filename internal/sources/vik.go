package sources

import (
	"context"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/scraper"
)

// Vik: ВиК Перник, новини лежат строками таблицы внутри .about_post
type Vik struct {
	desc       scraper.Descriptor
	r          scraper.Reader
	titleChars int
}

func NewVik(opts Options) *Vik {
	return &Vik{
		desc: scraper.NewDescriptor(KindVik, Municipality, "ВиК",
			scraper.Listing{Label: "Новини", URL: "http://www.vik-pernik.eu/single.php?name=%CD%EE%E2%E8%ED%E8"},
			scraper.Listing{Label: "Ремонтни дейности", URL: "http://www.vik-pernik.eu/single.php?name=%D0%E5%EC%EE%ED%F2%ED%E8%20%E4%E5%E9%ED%EE%F1%F2%E8"},
		),
		titleChars: opts.titleChars(),
	}
}

func (v *Vik) Descriptor() scraper.Descriptor { return v.desc }

func (v *Vik) Locate(ctx context.Context, s browser.Session, url string) ([]browser.Element, error) {
	post, err := requireOne(ctx, s, ".about_post", nil, url)
	if err != nil {
		return nil, err
	}
	table, err := requireOne(ctx, s, "table", post, url)
	if err != nil {
		return nil, err
	}
	rows, err := findAll(ctx, s, "tr", table, url)
	if err != nil {
		return nil, err
	}

	var candidates []browser.Element
	for _, row := range rows {
		el, ok, err := v.r.Descend(ctx, s, row, "td", "div", "div")
		if err != nil {
			return nil, err
		}
		// строки-разделители и шапка таблицы новостей не содержат
		if !ok {
			continue
		}
		candidates = append(candidates, el)
	}
	return candidates, nil
}

func (v *Vik) Title(ctx context.Context, s browser.Session, el browser.Element) (string, error) {
	return v.r.TitleWithFallback(ctx, s, el, v.titleChars,
		v.r.TextAt("b"),
		v.r.TextAt("div", "b"),
	)
}

// Date: второй div внутри первого div кандидата
func (v *Vik) Date(ctx context.Context, s browser.Session, el browser.Element) (scraper.Timestamp, error) {
	return v.r.DateAt(ctx, s, el, func() (browser.Element, bool, error) {
		first, ok, err := v.r.Descend(ctx, s, el, "div")
		if err != nil || !ok {
			return nil, false, err
		}
		return v.r.Nth(ctx, s, first, "div", 1)
	})
}

func (v *Vik) Content(ctx context.Context, s browser.Session, el browser.Element) (string, error) {
	return optionalText(ctx, s, el, v.r.TextAt("div", "div"))
}

// URL: у ВиК нет постоянных ссылок на новости
func (v *Vik) URL(context.Context, browser.Session, browser.Element) (string, bool, error) {
	return "", false, nil
}
