package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"municipal-updates/internal/observability"
)

type RodOptions struct {
	ChromePath      string
	Headless        bool
	UserAgent       string
	PageTimeout     time.Duration
	WaitLoadTimeout time.Duration
	// пауза после load, чтобы клиентский шаблонизатор успел дорисовать листинг
	LazyLoadDelay time.Duration
}

// RodSession: headless Chromium через go-rod, одна вкладка на сессию
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	opts     RodOptions
	logger   *observability.Logger
}

type rodElement struct {
	el       *rod.Element
	selector string
}

func (e *rodElement) Selector() string { return e.selector }

// NewRodSession запускает браузер; закрывать через Close
func NewRodSession(ctx context.Context, opts RodOptions, logger *observability.Logger) (*RodSession, error) {
	l := launcher.New().Context(ctx).Headless(opts.Headless)
	if opts.ChromePath != "" {
		l = l.Bin(opts.ChromePath)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			logger.Warn("Failed to set user agent", "error", err.Error())
		}
	}

	logger.Info("Browser session started",
		"headless", opts.Headless,
		"chrome_path", opts.ChromePath,
	)

	return &RodSession{
		launcher: l,
		browser:  b,
		page:     page,
		opts:     opts,
		logger:   logger,
	}, nil
}

func (s *RodSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.opts.PageTimeout)
	defer cancel()

	start := time.Now()
	page := s.page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}

	waitCtx, waitCancel := context.WithTimeout(navCtx, s.opts.WaitLoadTimeout)
	defer waitCancel()
	if err := s.page.Context(waitCtx).WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}

	if s.opts.LazyLoadDelay > 0 {
		select {
		case <-time.After(s.opts.LazyLoadDelay):
		case <-navCtx.Done():
			return navCtx.Err()
		}
	}

	s.logger.Debug("Page rendered",
		"url", url,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *RodSession) element(el Element) (*rodElement, error) {
	re, ok := el.(*rodElement)
	if !ok {
		return nil, fmt.Errorf("element %T does not belong to a rod session", el)
	}
	return re, nil
}

func (s *RodSession) FindOne(ctx context.Context, selector string, scope Element) (Element, bool, error) {
	var (
		has   bool
		found *rod.Element
		err   error
	)
	// Has не ждёт появления элемента, в отличие от Element()
	if scope == nil {
		has, found, err = s.page.Context(ctx).Has(selector)
	} else {
		re, rerr := s.element(scope)
		if rerr != nil {
			return nil, false, rerr
		}
		has, found, err = re.el.Context(ctx).Has(selector)
	}
	if err != nil {
		return nil, false, s.wrap(selector, err)
	}
	if !has {
		return nil, false, nil
	}
	return &rodElement{el: found, selector: selector}, true, nil
}

func (s *RodSession) FindAll(ctx context.Context, selector string, scope Element) ([]Element, error) {
	var (
		list rod.Elements
		err  error
	)
	if scope == nil {
		list, err = s.page.Context(ctx).Elements(selector)
	} else {
		re, rerr := s.element(scope)
		if rerr != nil {
			return nil, rerr
		}
		list, err = re.el.Context(ctx).Elements(selector)
	}
	if err != nil {
		return nil, s.wrap(selector, err)
	}

	out := make([]Element, 0, len(list))
	for _, el := range list {
		out = append(out, &rodElement{el: el, selector: selector})
	}
	return out, nil
}

func (s *RodSession) Text(ctx context.Context, el Element) (string, error) {
	re, err := s.element(el)
	if err != nil {
		return "", err
	}
	text, err := re.el.Context(ctx).Text()
	if err != nil {
		return "", s.wrap(re.selector, err)
	}
	return text, nil
}

func (s *RodSession) Attribute(ctx context.Context, el Element, name string) (string, bool, error) {
	re, err := s.element(el)
	if err != nil {
		return "", false, err
	}
	v, err := re.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, s.wrap(re.selector, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (s *RodSession) IsStale(ctx context.Context, el Element) (bool, error) {
	re, err := s.element(el)
	if err != nil {
		return false, err
	}
	res, err := re.el.Context(ctx).Eval(`() => this.isConnected`)
	if err != nil {
		if isDetached(err) {
			return true, nil
		}
		return false, err
	}
	return !res.Value.Bool(), nil
}

func (s *RodSession) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	s.logger.Info("Browser session closed")
	return err
}

func (s *RodSession) wrap(selector string, err error) error {
	if isDetached(err) {
		return fmt.Errorf("%s: %w", selector, ErrStale)
	}
	return fmt.Errorf("%s: %w", selector, err)
}

// узел или его JS-контекст уничтожены перерисовкой
func isDetached(err error) bool {
	return errors.Is(err, cdp.ErrObjNotFound) ||
		errors.Is(err, cdp.ErrCtxNotFound) ||
		errors.Is(err, cdp.ErrCtxDestroyed)
}
