package sources

import (
	"context"
	"strings"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/scraper"
)

// Elektro: Електрохолд, общий листинг по всей стране, оставляем только карточки общины
type Elektro struct {
	desc       scraper.Descriptor
	r          scraper.Reader
	fresh      scraper.Reader
	titleChars int
}

func NewElektro(opts Options) *Elektro {
	return &Elektro{
		desc: scraper.NewDescriptor(KindElektro, Municipality, "Електрозахранване",
			scraper.Listing{Label: "Новини", URL: "https://electrohold.bg/bg/mediya-centr-group/novini/"},
		),
		fresh:      scraper.Reader{Fresh: true, FreshTimeout: opts.FreshTimeout},
		titleChars: opts.titleChars(),
	}
}

func (e *Elektro) Descriptor() scraper.Descriptor { return e.desc }

func (e *Elektro) Locate(ctx context.Context, s browser.Session, url string) ([]browser.Element, error) {
	container, err := requireOne(ctx, s, ".news-card", nil, url)
	if err != nil {
		return nil, err
	}
	cards, err := findAll(ctx, s, ".card-wrapper", container, url)
	if err != nil {
		return nil, err
	}

	keyword := strings.ToLower(e.desc.Municipality())
	var relevant []browser.Element
	for _, card := range cards {
		text, err := e.fresh.Text(ctx, s, card)
		if err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(text), keyword) {
			relevant = append(relevant, card)
		}
	}
	return relevant, nil
}

func (e *Elektro) Title(ctx context.Context, s browser.Session, el browser.Element) (string, error) {
	return e.r.TitleWithFallback(ctx, s, el, e.titleChars, e.r.TextAt(".card-content__title"))
}

func (e *Elektro) Date(ctx context.Context, s browser.Session, el browser.Element) (scraper.Timestamp, error) {
	return e.r.DateAt(ctx, s, el, func() (browser.Element, bool, error) {
		return e.r.Descend(ctx, s, el, ".card-content__data")
	})
}

func (e *Elektro) Content(ctx context.Context, s browser.Session, el browser.Element) (string, error) {
	return optionalText(ctx, s, el, e.r.TextAt(".card-content__text"))
}

func (e *Elektro) URL(ctx context.Context, s browser.Session, el browser.Element) (string, bool, error) {
	return e.r.AttrAt("href", ".card-content__button")(ctx, s, el)
}
