package sources

import (
	"context"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/scraper"
)

// requireOne ищет обязательный элемент разметки листинга.
// Его отсутствие означает, что страница сменила вёрстку.
func requireOne(ctx context.Context, s browser.Session, selector string, scope browser.Element, url string) (browser.Element, error) {
	el, ok, err := s.FindOne(ctx, selector, scope)
	if err != nil {
		return nil, scraper.NewError(scraper.CodeExtraction, "lookup failed", err).
			WithDetail("selector", selector).
			WithDetail("url", url)
	}
	if !ok {
		return nil, scraper.NewError(scraper.CodeLocatorStructure, "expected element is missing", nil).
			WithDetail("selector", selector).
			WithDetail("url", url)
	}
	return el, nil
}

func findAll(ctx context.Context, s browser.Session, selector string, scope browser.Element, url string) ([]browser.Element, error) {
	all, err := s.FindAll(ctx, selector, scope)
	if err != nil {
		return nil, scraper.NewError(scraper.CodeExtraction, "lookup failed", err).
			WithDetail("selector", selector).
			WithDetail("url", url)
	}
	return all, nil
}

// optionalText возвращает "", если поля нет
func optionalText(ctx context.Context, s browser.Session, el browser.Element, strategy scraper.TextStrategy) (string, error) {
	text, _, err := strategy(ctx, s, el)
	return text, err
}
