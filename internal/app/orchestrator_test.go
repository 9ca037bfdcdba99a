package app

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/config"
	"municipal-updates/internal/fetcher"
	"municipal-updates/internal/normalize"
	"municipal-updates/internal/observability"
	"municipal-updates/internal/scraper"
	"municipal-updates/internal/sources"
)

type pageMap map[string]string

func (p pageMap) Fetch(_ context.Context, url string) (*fetcher.FetchResponse, error) {
	body, ok := p[url]
	if !ok {
		return &fetcher.FetchResponse{StatusCode: http.StatusNotFound, URL: url, Headers: http.Header{}}, nil
	}
	return &fetcher.FetchResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(body),
		URL:        url,
		Headers:    http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
	}, nil
}

// closeCounter считает закрытия сессии
type closeCounter struct {
	*browser.StaticSession
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.StaticSession.Close()
}

const (
	vikPage = `<div class="about_post"><table>
<tr><td><div><div><b>Авария</b><div><div>Без вода</div><div>14.03.2023, 10:15:30</div></div></div></div></td></tr>
</table></div>`
	toploPage = `<div class="jet-smart-listing"><div class="jet-smart-listing__post">
<div class="jet-smart-listing__post-title">Топла вода</div><span class="post__date">10.01.2023</span>
</div></div>`
	elektroPage = `<div class="news-card"><div class="card-wrapper">
<div class="card-content__title">Прекъсване Перник</div><div class="card-content__data">14 март 2023</div>
</div></div>`
)

func allPages() pageMap {
	pages := pageMap{}
	opts := sources.Options{}
	for _, l := range sources.NewVik(opts).Descriptor().Listings() {
		pages[l.URL] = vikPage
	}
	for _, l := range sources.NewToplo(opts).Descriptor().Listings() {
		pages[l.URL] = toploPage
	}
	for _, l := range sources.NewElektro(opts).Descriptor().Listings() {
		pages[l.URL] = elektroPage
	}
	return pages
}

type harness struct {
	job      *Job
	metrics  *observability.Metrics
	session  *closeCounter
	progress []int
}

func newHarness(pages pageMap) *harness {
	cfg := config.Default()
	logger := observability.NewNopLogger()
	h := &harness{metrics: observability.NewMetrics()}
	factory := func(context.Context) (browser.Session, error) {
		h.session = &closeCounter{StaticSession: browser.NewStaticSession(pages, logger)}
		return h.session, nil
	}
	sc := scraper.NewScraper(normalize.NewNormalizer(cfg.Normalize), logger)
	h.job = NewJob(&cfg, logger, h.metrics, sc, factory, func(p int) {
		h.progress = append(h.progress, p)
	})
	return h
}

func TestJobScrapeAllSources(t *testing.T) {
	h := newHarness(allPages())

	res := h.job.Scrape(context.Background())
	require.False(t, res.Failed)
	assert.NoError(t, res.Err())
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Notice)

	// ВиК: два листинга по одной записи, затем Топлофикация и Електрозахранване
	require.Equal(t, 4, res.Table.Len())
	institutions := []string{}
	for _, r := range res.Table.Records {
		institutions = append(institutions, r.Institution)
	}
	assert.Equal(t, []string{"ВиК", "ВиК", "Топлофикация", "Електрозахранване"}, institutions)

	assert.Equal(t, []int{0, 40, 50, 60, 70, 80, 100}, h.progress)
	assert.Equal(t, 1, h.session.closed)

	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Records("ВиК")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Runs("Електрозахранване", "success")))
}

func TestJobScrapeFailureIsAllOrNothing(t *testing.T) {
	pages := allPages()
	for _, l := range sources.NewToplo(sources.Options{}).Descriptor().Listings() {
		pages[l.URL] = `<p>нова вёрстка</p>`
	}
	h := newHarness(pages)

	res := h.job.Scrape(context.Background())
	require.True(t, res.Failed)
	assert.Equal(t, 0, res.Table.Len(), "no partial table even though ВиК succeeded")
	assert.Equal(t, GenericNotice, res.Notice)
	assert.True(t, res.RetryDisabled)
	assert.Error(t, res.Err())
	assert.NotContains(t, res.Err().Error(), "LOCATOR_STRUCTURE")

	assert.Equal(t, 1, h.session.closed, "session closed on failure")
	assert.Equal(t, []int{0, 40, 50}, h.progress)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Runs("Топлофикация", "failure")))
}

func TestJobScrapeSelectedSource(t *testing.T) {
	h := newHarness(allPages())

	res := h.job.Scrape(context.Background(), sources.KindElektro)
	require.False(t, res.Failed)
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, "Прекъсване Перник", res.Table.Records[0].Title)
	assert.Equal(t, []int{0, 40, 70, 80, 100}, h.progress)
}

func TestJobScrapeSessionError(t *testing.T) {
	cfg := config.Default()
	logger := observability.NewNopLogger()
	sc := scraper.NewScraper(normalize.NewNormalizer(cfg.Normalize), logger)
	factory := func(context.Context) (browser.Session, error) {
		return nil, errors.New("chrome not found")
	}

	res := NewJob(&cfg, logger, nil, sc, factory, nil).Scrape(context.Background())
	assert.True(t, res.Failed)
	assert.Equal(t, GenericNotice, res.Notice)
	assert.NotNil(t, res.Table)
}

func TestJobScrapeUnknownSource(t *testing.T) {
	h := newHarness(allPages())

	res := h.job.Scrape(context.Background(), "gas")
	assert.True(t, res.Failed)
	assert.Nil(t, h.session, "no session opened")
}

func TestGracefulShutdownTimeout(t *testing.T) {
	ctx, cancel := GracefulShutdown(context.Background(), observability.NewNopLogger(), 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
		assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled by timeout")
	}
}

func TestGracefulShutdownCancel(t *testing.T) {
	ctx, cancel := GracefulShutdown(context.Background(), observability.NewNopLogger(), 0)
	cancel()

	select {
	case <-ctx.Done():
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}
