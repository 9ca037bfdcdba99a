package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/normalize"
)

// TextStrategy делает одну попытку достать текст из кандидата.
// ok == false (без ошибки) означает «поля нет», цепочка переходит к следующей попытке.
type TextStrategy func(ctx context.Context, s browser.Session, el browser.Element) (text string, ok bool, err error)

// Reader читает элементы кандидата. С Fresh перед каждым чтением ждёт AwaitFresh.
type Reader struct {
	Fresh        bool
	FreshTimeout time.Duration
}

func (r Reader) await(ctx context.Context, s browser.Session, el browser.Element) error {
	if !r.Fresh {
		return nil
	}
	return AwaitFresh(ctx, s, el, r.FreshTimeout)
}

func (r Reader) Text(ctx context.Context, s browser.Session, el browser.Element) (string, error) {
	if err := r.await(ctx, s, el); err != nil {
		return "", err
	}
	text, err := s.Text(ctx, el)
	if err != nil {
		return "", readError(el, "read text", err)
	}
	return text, nil
}

// Attr: ok == false, если атрибута нет
func (r Reader) Attr(ctx context.Context, s browser.Session, el browser.Element, name string) (string, bool, error) {
	if err := r.await(ctx, s, el); err != nil {
		return "", false, err
	}
	v, ok, err := s.Attribute(ctx, el, name)
	if err != nil {
		return "", false, readError(el, "read attribute "+name, err)
	}
	return v, ok, nil
}

// Descend спускается по цепочке селекторов, на каждом шаге берёт первого потомка
func (r Reader) Descend(ctx context.Context, s browser.Session, el browser.Element, selectors ...string) (browser.Element, bool, error) {
	cur := el
	for _, sel := range selectors {
		next, ok, err := s.FindOne(ctx, sel, cur)
		if err != nil {
			return nil, false, readError(cur, "find "+sel, err)
		}
		if !ok {
			return nil, false, nil
		}
		cur = next
	}
	return cur, true, nil
}

// Nth возвращает i-го (с нуля) потомка по селектору
func (r Reader) Nth(ctx context.Context, s browser.Session, el browser.Element, selector string, i int) (browser.Element, bool, error) {
	all, err := s.FindAll(ctx, selector, el)
	if err != nil {
		return nil, false, readError(el, "find all "+selector, err)
	}
	if i < 0 || i >= len(all) {
		return nil, false, nil
	}
	return all[i], true, nil
}

// TextAt спускается по селекторам и читает непустой текст
func (r Reader) TextAt(selectors ...string) TextStrategy {
	return func(ctx context.Context, s browser.Session, el browser.Element) (string, bool, error) {
		target, ok, err := r.Descend(ctx, s, el, selectors...)
		if err != nil || !ok {
			return "", false, err
		}
		text, err := r.Text(ctx, s, target)
		if err != nil {
			return "", false, err
		}
		text = strings.TrimSpace(text)
		return text, text != "", nil
	}
}

// AttrAt спускается по селекторам и читает непустой атрибут
func (r Reader) AttrAt(name string, selectors ...string) TextStrategy {
	return func(ctx context.Context, s browser.Session, el browser.Element) (string, bool, error) {
		target, ok, err := r.Descend(ctx, s, el, selectors...)
		if err != nil || !ok {
			return "", false, err
		}
		v, ok, err := r.Attr(ctx, s, target, name)
		if err != nil || !ok || v == "" {
			return "", false, err
		}
		return v, true, nil
	}
}

// FirstText перебирает стратегии по порядку и возвращает первый результат
func FirstText(ctx context.Context, s browser.Session, el browser.Element, strategies ...TextStrategy) (string, bool, error) {
	for _, try := range strategies {
		text, ok, err := try(ctx, s, el)
		if err != nil {
			return "", false, err
		}
		if ok {
			return text, true, nil
		}
	}
	return "", false, nil
}

// TitleWithFallback перебирает стратегии по порядку, иначе начало текста кандидата.
// Пустой заголовок не возвращается никогда.
func (r Reader) TitleWithFallback(ctx context.Context, s browser.Session, el browser.Element, maxChars int, strategies ...TextStrategy) (string, error) {
	title, ok, err := FirstText(ctx, s, el, strategies...)
	if err != nil {
		return "", err
	}
	if ok {
		return title, nil
	}

	raw, err := r.Text(ctx, s, el)
	if err != nil {
		return "", err
	}
	title = normalize.Truncate(raw, maxChars)
	if title == "" {
		return "", NewError(CodeExtraction, "candidate has no text to derive a title from", nil).
			WithDetail("selector", el.Selector())
	}
	return title, nil
}

// DateAt читает текст найденного элемента и нормализует дату.
// Нет элемента: ExtractionError. Нераспознанный текст: DateParseError.
func (r Reader) DateAt(ctx context.Context, s browser.Session, el browser.Element, find func() (browser.Element, bool, error)) (Timestamp, error) {
	dateEl, ok, err := find()
	if err != nil {
		return Timestamp{}, err
	}
	if !ok {
		return Timestamp{}, NewError(CodeExtraction, "date element not found", nil).
			WithDetail("selector", el.Selector())
	}
	raw, err := r.Text(ctx, s, dateEl)
	if err != nil {
		return Timestamp{}, err
	}
	return Normalize(raw)
}

func readError(el browser.Element, op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return NewError(CodeExtraction, op, err).WithDetail("selector", el.Selector())
}
