package browser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"municipal-updates/internal/fetcher"
	"municipal-updates/internal/observability"
)

// PageFetcher отдаёт HTML для StaticSession (fetcher.Fetcher или фейк в тестах)
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.FetchResponse, error)
}

// StaticSession рендерит страницу без JS: HTTP + goquery.
// Каждый Navigate начинает новое «поколение» документа; элементы прошлых поколений stale.
type StaticSession struct {
	fetcher    PageFetcher
	logger     *observability.Logger
	doc        *goquery.Document
	generation int
}

type staticElement struct {
	sel        *goquery.Selection
	selector   string
	generation int
}

func (e *staticElement) Selector() string { return e.selector }

func NewStaticSession(f PageFetcher, logger *observability.Logger) *StaticSession {
	return &StaticSession{fetcher: f, logger: logger}
}

func (s *StaticSession) Navigate(ctx context.Context, url string) error {
	resp, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	// Сайты общин часто отдают windows-1251
	reader, err := charset.NewReader(bytes.NewReader(resp.Body), resp.Headers.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("failed to decode charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	s.doc = doc
	s.generation++

	s.logger.Debug("Static page loaded",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
	)
	return nil
}

func (s *StaticSession) root(scope Element) (*goquery.Selection, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	if scope == nil {
		return s.doc.Selection, nil
	}
	el, err := s.element(scope)
	if err != nil {
		return nil, err
	}
	return el.sel, nil
}

func (s *StaticSession) element(el Element) (*staticElement, error) {
	se, ok := el.(*staticElement)
	if !ok {
		return nil, fmt.Errorf("element %T does not belong to a static session", el)
	}
	if se.generation != s.generation {
		return nil, fmt.Errorf("%s: %w", se.selector, ErrStale)
	}
	return se, nil
}

func (s *StaticSession) FindOne(_ context.Context, selector string, scope Element) (Element, bool, error) {
	root, err := s.root(scope)
	if err != nil {
		return nil, false, err
	}
	found := root.Find(selector).First()
	if found.Length() == 0 {
		return nil, false, nil
	}
	return &staticElement{sel: found, selector: selector, generation: s.generation}, true, nil
}

func (s *StaticSession) FindAll(_ context.Context, selector string, scope Element) ([]Element, error) {
	root, err := s.root(scope)
	if err != nil {
		return nil, err
	}
	var out []Element
	root.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, &staticElement{sel: sel, selector: selector, generation: s.generation})
	})
	return out, nil
}

func (s *StaticSession) Text(_ context.Context, el Element) (string, error) {
	se, err := s.element(el)
	if err != nil {
		return "", err
	}
	return visibleText(se.sel), nil
}

func (s *StaticSession) Attribute(_ context.Context, el Element, name string) (string, bool, error) {
	se, err := s.element(el)
	if err != nil {
		return "", false, err
	}
	v, ok := se.sel.Attr(name)
	return v, ok, nil
}

func (s *StaticSession) IsStale(_ context.Context, el Element) (bool, error) {
	se, ok := el.(*staticElement)
	if !ok {
		return false, fmt.Errorf("element %T does not belong to a static session", el)
	}
	return se.generation != s.generation, nil
}

func (s *StaticSession) Close() error {
	s.doc = nil
	return nil
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "br": true, "dd": true, "div": true,
	"dl": true, "dt": true, "footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "ol": true, "p": true,
	"section": true, "table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// visibleText приближает innerText: блочные элементы разделяются переводом строки,
// script/style пропускаются.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
				return
			}
		}
		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
