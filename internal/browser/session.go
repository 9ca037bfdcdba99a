// Package browser описывает сессию рендеринга, через которую движок читает DOM.
//
// Session владеет одной активной страницей. Элементы, полученные до очередного
// Navigate, могут стать «протухшими» (stale), это проверяется через IsStale.
package browser

import (
	"context"
	"errors"
)

// ErrStale возвращается при чтении из элемента, отсоединённого от живого DOM
var ErrStale = errors.New("element is no longer attached to the document")

// Element: непрозрачный дескриптор узла, выданный конкретной Session
type Element interface {
	// Selector, по которому элемент был найден (для логов и ошибок)
	Selector() string
}

// Session управляет удалённым движком рендеринга.
// scope == nil означает поиск по всему документу.
type Session interface {
	Navigate(ctx context.Context, url string) error
	FindOne(ctx context.Context, selector string, scope Element) (Element, bool, error)
	FindAll(ctx context.Context, selector string, scope Element) ([]Element, error)
	Text(ctx context.Context, el Element) (string, error)
	Attribute(ctx context.Context, el Element, name string) (string, bool, error)
	IsStale(ctx context.Context, el Element) (bool, error)
	Close() error
}
