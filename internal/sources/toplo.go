package sources

import (
	"context"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/scraper"
)

// Toplo: Топлофикация Перник. Листинг перерисовывается скриптами,
// поэтому каждое чтение ждёт, пока элемент снова станет живым.
type Toplo struct {
	desc       scraper.Descriptor
	r          scraper.Reader
	titleChars int
}

func NewToplo(opts Options) *Toplo {
	return &Toplo{
		desc: scraper.NewDescriptor(KindToplo, Municipality, "Топлофикация",
			scraper.Listing{Label: "Новини", URL: "https://toplo-pernik.com/news/"},
		),
		r:          scraper.Reader{Fresh: true, FreshTimeout: opts.FreshTimeout},
		titleChars: opts.titleChars(),
	}
}

func (t *Toplo) Descriptor() scraper.Descriptor { return t.desc }

// Locate: сначала закреплённые записи, затем обычные
func (t *Toplo) Locate(ctx context.Context, s browser.Session, url string) ([]browser.Element, error) {
	container, err := requireOne(ctx, s, ".jet-smart-listing", nil, url)
	if err != nil {
		return nil, err
	}
	featured, err := findAll(ctx, s, ".jet-smart-listing__featured", container, url)
	if err != nil {
		return nil, err
	}
	posts, err := findAll(ctx, s, ".jet-smart-listing__post", container, url)
	if err != nil {
		return nil, err
	}
	return append(featured, posts...), nil
}

func (t *Toplo) Title(ctx context.Context, s browser.Session, el browser.Element) (string, error) {
	return t.r.TitleWithFallback(ctx, s, el, t.titleChars, t.r.TextAt(".jet-smart-listing__post-title"))
}

func (t *Toplo) Date(ctx context.Context, s browser.Session, el browser.Element) (scraper.Timestamp, error) {
	return t.r.DateAt(ctx, s, el, func() (browser.Element, bool, error) {
		return t.r.Descend(ctx, s, el, ".post__date")
	})
}

func (t *Toplo) Content(ctx context.Context, s browser.Session, el browser.Element) (string, error) {
	return optionalText(ctx, s, el, t.r.TextAt(".jet-smart-listing__post-excerpt"))
}

func (t *Toplo) URL(ctx context.Context, s browser.Session, el browser.Element) (string, bool, error) {
	return t.r.AttrAt("href", ".jet-smart-listing__more")(ctx, s, el)
}
