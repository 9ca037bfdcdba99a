package sources

import (
	"fmt"
	"time"

	"municipal-updates/internal/config"
	"municipal-updates/internal/scraper"
)

const Municipality = "Перник"

const (
	KindVik     = "vik"
	KindToplo   = "toplo"
	KindElektro = "elektro"
)

type Options struct {
	FreshTimeout       time.Duration
	TitleFallbackChars int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FreshTimeout:       cfg.GetStaleTimeout(),
		TitleFallbackChars: cfg.Normalize.TitleFallbackChars,
	}
}

func (o Options) titleChars() int {
	if o.TitleFallbackChars <= 0 {
		return 50
	}
	return o.TitleFallbackChars
}

type constructor func(Options) scraper.Source

var constructors = map[string]constructor{
	KindVik:     func(o Options) scraper.Source { return NewVik(o) },
	KindToplo:   func(o Options) scraper.Source { return NewToplo(o) },
	KindElektro: func(o Options) scraper.Source { return NewElektro(o) },
}

// Kinds возвращает все институции в порядке запуска
func Kinds() []string {
	return []string{KindVik, KindToplo, KindElektro}
}

func New(kind string, opts Options) (scraper.Source, error) {
	build, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (known: %v)", kind, Kinds())
	}
	return build(opts), nil
}

// Resolve собирает источники по списку kinds (по умолчанию все) и применяет подмены листингов из конфига
func Resolve(cfg *config.Config, kinds ...string) ([]scraper.Source, error) {
	if len(kinds) == 0 {
		kinds = cfg.Sources.Enabled
	}
	if len(kinds) == 0 {
		kinds = Kinds()
	}

	opts := OptionsFromConfig(cfg)
	seen := make(map[string]bool, len(kinds))
	out := make([]scraper.Source, 0, len(kinds))

	for _, kind := range kinds {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		src, err := New(kind, opts)
		if err != nil {
			return nil, err
		}
		if o, ok := cfg.Override(kind); ok {
			listings := make([]scraper.Listing, 0, len(o.Listings))
			for _, l := range o.Listings {
				listings = append(listings, scraper.Listing{Label: l.Label, URL: l.URL})
			}
			src = withDescriptor{Source: src, desc: src.Descriptor().WithListings(listings...)}
		}
		out = append(out, src)
	}
	return out, nil
}

// withDescriptor подменяет только дескриптор, экстракторы остаются прежними
type withDescriptor struct {
	scraper.Source
	desc scraper.Descriptor
}

func (w withDescriptor) Descriptor() scraper.Descriptor { return w.desc }
