package scraper

import (
	"context"
	"time"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/normalize"
	"municipal-updates/internal/observability"
)

// Scraper проходит листинги дескриптора, собирает кандидатов и строит записи.
// Сессию не закрывает и не сбрасывает, ею владеет вызывающий.
type Scraper struct {
	normalizer *normalize.Normalizer
	logger     *observability.Logger
}

func NewScraper(normalizer *normalize.Normalizer, logger *observability.Logger) *Scraper {
	return &Scraper{
		normalizer: normalizer,
		logger:     logger,
	}
}

// Run прогоняет один источник. Любой отказ прерывает весь прогон, частичная таблица не возвращается.
func (sc *Scraper) Run(ctx context.Context, sess browser.Session, src Source) (*UpdateTable, error) {
	d := src.Descriptor()
	start := time.Now()

	sc.logger.Info("Starting extraction",
		"municipality", d.Municipality(),
		"institution", d.Institution(),
		"listings", len(d.Listings()),
	)

	table := &UpdateTable{}

	for _, listing := range d.Listings() {
		if err := sess.Navigate(ctx, listing.URL); err != nil {
			return nil, annotate(NewError(CodeNavigation, "failed to load listing", err), d, listing, -1)
		}

		candidates, err := src.Locate(ctx, sess, listing.URL)
		if err != nil {
			return nil, annotate(err, d, listing, -1)
		}

		sc.logger.Debug("Candidates located",
			"institution", d.Institution(),
			"label", listing.Label,
			"url", listing.URL,
			"candidates", len(candidates),
		)

		for i, el := range candidates {
			record, err := sc.buildRecord(ctx, sess, src, d, listing, el)
			if err != nil {
				return nil, annotate(err, d, listing, i)
			}
			table.Records = append(table.Records, record)
		}
	}

	sc.logger.Info("Extraction completed",
		"institution", d.Institution(),
		"records", table.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return table, nil
}

// buildRecord вызывает экстракторы в фиксированном порядке: title, date, content, url
func (sc *Scraper) buildRecord(ctx context.Context, sess browser.Session, src Source, d Descriptor, listing Listing, el browser.Element) (UpdateRecord, error) {
	title, err := src.Title(ctx, sess, el)
	if err != nil {
		return UpdateRecord{}, err
	}
	date, err := src.Date(ctx, sess, el)
	if err != nil {
		return UpdateRecord{}, err
	}
	content, err := src.Content(ctx, sess, el)
	if err != nil {
		return UpdateRecord{}, err
	}
	link, ok, err := src.URL(ctx, sess, el)
	if err != nil {
		return UpdateRecord{}, err
	}

	recordURL := listing.URL
	if ok {
		if resolved := normalize.NormalizeURL(listing.URL, link); resolved != "" {
			recordURL = resolved
		}
	}

	if cleaned := sc.normalizer.CleanText(title); cleaned != "" {
		title = cleaned
	}

	return UpdateRecord{
		Municipality: d.Municipality(),
		Institution:  d.Institution(),
		Label:        listing.Label,
		Title:        title,
		Date:         date,
		Content:      sc.normalizer.CleanText(content),
		URL:          recordURL,
	}, nil
}

// annotate добавляет контекст прогона; всё, что не из таксономии, становится ExtractionError
func annotate(err error, d Descriptor, listing Listing, candidate int) error {
	e, ok := AsError(err)
	if !ok {
		e = NewError(CodeExtraction, "unexpected failure", err)
	}
	e.WithDetail("institution", d.Institution()).
		WithDetail("label", listing.Label).
		WithDetail("listing_url", listing.URL)
	if candidate >= 0 {
		e.WithDetail("candidate", candidate)
	}
	return e
}
