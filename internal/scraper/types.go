package scraper

import (
	"context"
	"time"

	"municipal-updates/internal/browser"
)

// Timestamp хранит каноническую дату; HasClock различает «только дата» и «дата+время».
// Для «только даты» Time указывает на полночь.
type Timestamp struct {
	Time     time.Time
	HasClock bool
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

func (t Timestamp) String() string {
	if t.HasClock {
		return t.Time.Format(DateTimeLayout)
	}
	return t.Time.Format(DateLayout)
}

func (t Timestamp) Before(o Timestamp) bool {
	return t.Time.Before(o.Time)
}

// Equal сравнивает моменты времени: дата без часов равна той же дате в 00:00:00
func (t Timestamp) Equal(o Timestamp) bool {
	return t.Time.Equal(o.Time)
}

type UpdateRecord struct {
	Municipality string
	Institution  string
	Label        string
	Title        string
	Date         Timestamp
	Content      string
	URL          string
}

// UpdateTable хранит записи одного прогона в порядке обхода (листинг × документ)
type UpdateTable struct {
	Records []UpdateRecord
}

func (t *UpdateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Concat склеивает таблицы без дедупликации и сортировки
func Concat(tables ...*UpdateTable) *UpdateTable {
	out := &UpdateTable{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		out.Records = append(out.Records, t.Records...)
	}
	return out
}

// Listing: категория и адрес страницы со списком
type Listing struct {
	Label string
	URL   string
}

// Descriptor неизменяем, поля доступны только через методы
type Descriptor struct {
	kind         string
	municipality string
	institution  string
	listings     []Listing
}

func NewDescriptor(kind, municipality, institution string, listings ...Listing) Descriptor {
	return Descriptor{
		kind:         kind,
		municipality: municipality,
		institution:  institution,
		listings:     append([]Listing(nil), listings...),
	}
}

func (d Descriptor) Kind() string         { return d.kind }
func (d Descriptor) Municipality() string { return d.municipality }
func (d Descriptor) Institution() string  { return d.institution }

// Listings возвращает копию, порядок объявления сохраняется
func (d Descriptor) Listings() []Listing {
	return append([]Listing(nil), d.listings...)
}

// WithListings возвращает копию с другими листингами
func (d Descriptor) WithListings(listings ...Listing) Descriptor {
	return NewDescriptor(d.kind, d.municipality, d.institution, listings...)
}

// Source описывает одну институцию. Оркестратор зависит только от него.
type Source interface {
	Descriptor() Descriptor
	// Locate собирает кандидатов на уже открытой странице url
	Locate(ctx context.Context, s browser.Session, url string) ([]browser.Element, error)
	Title(ctx context.Context, s browser.Session, el browser.Element) (string, error)
	Date(ctx context.Context, s browser.Session, el browser.Element) (Timestamp, error)
	Content(ctx context.Context, s browser.Session, el browser.Element) (string, error)
	// URL: ok == false, если институция не публикует постоянных ссылок
	URL(ctx context.Context, s browser.Session, el browser.Element) (string, bool, error)
}
