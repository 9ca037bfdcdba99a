package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"municipal-updates/internal/browser"
)

type fakeElement string

func (e fakeElement) Selector() string { return string(e) }

// flakySession сообщает stale первые staleFor проверок
type flakySession struct {
	staleFor int
	checks   int
	checkErr error
}

func (s *flakySession) Navigate(context.Context, string) error { return nil }
func (s *flakySession) FindOne(context.Context, string, browser.Element) (browser.Element, bool, error) {
	return nil, false, nil
}
func (s *flakySession) FindAll(context.Context, string, browser.Element) ([]browser.Element, error) {
	return nil, nil
}
func (s *flakySession) Text(context.Context, browser.Element) (string, error) { return "текст", nil }
func (s *flakySession) Attribute(context.Context, browser.Element, string) (string, bool, error) {
	return "", false, nil
}
func (s *flakySession) Close() error { return nil }

func (s *flakySession) IsStale(context.Context, browser.Element) (bool, error) {
	s.checks++
	if s.checkErr != nil {
		return false, s.checkErr
	}
	return s.checks <= s.staleFor, nil
}

func withFastPolling(t *testing.T) {
	t.Helper()
	prev := freshPollInterval
	freshPollInterval = time.Millisecond
	t.Cleanup(func() { freshPollInterval = prev })
}

func TestAwaitFreshRecovers(t *testing.T) {
	withFastPolling(t)
	s := &flakySession{staleFor: 3}

	if err := AwaitFresh(context.Background(), s, fakeElement(".card"), time.Second); err != nil {
		t.Fatalf("AwaitFresh error = %v", err)
	}
	if s.checks != 4 {
		t.Errorf("checks = %d, want 4", s.checks)
	}
}

func TestAwaitFreshTimeout(t *testing.T) {
	withFastPolling(t)
	s := &flakySession{staleFor: 1 << 30}

	err := AwaitFresh(context.Background(), s, fakeElement(".card"), 20*time.Millisecond)
	if !errors.Is(err, ErrStaleElementTimeout) {
		t.Fatalf("AwaitFresh error = %v, want StaleElementTimeout", err)
	}
}

func TestAwaitFreshCheckError(t *testing.T) {
	s := &flakySession{checkErr: errors.New("target closed")}

	err := AwaitFresh(context.Background(), s, fakeElement(".card"), time.Second)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("AwaitFresh error = %v, want ExtractionError", err)
	}
}

func TestReaderFreshWaitsBeforeRead(t *testing.T) {
	withFastPolling(t)
	s := &flakySession{staleFor: 2}
	r := Reader{Fresh: true, FreshTimeout: time.Second}

	text, err := r.Text(context.Background(), s, fakeElement(".card"))
	if err != nil {
		t.Fatalf("Text error = %v", err)
	}
	if text != "текст" {
		t.Errorf("Text = %q", text)
	}
	if s.checks != 3 {
		t.Errorf("checks = %d, want 3", s.checks)
	}
}
