package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"newsbrief/internal/digest"
)

// Config controls extractor behavior.
type Config struct {
	UserAgent   string
	NavTimeout  time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	DomainQPS   float64
}

func (c Config) withDefaults() Config {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 25 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	return c
}

// navigator renders one URL and returns the resulting HTML. Factored out so
// the retry and filtering logic is testable without a browser.
type navigator interface {
	Navigate(ctx context.Context, rawURL string) (string, error)
}

// Extractor renders candidate pages in isolated browser contexts and
// reduces them to plain text. Extract never returns an error: every failure
// degrades to an empty document so the caller can continue its batch.
type Extractor struct {
	cfg            Config
	nav            navigator
	allocCancel    context.CancelFunc
	logger         *zap.Logger
	domainLimiters sync.Map
}

// New creates an extractor backed by a headless Chrome exec allocator.
// Each Extract call opens and tears down its own tab context; the allocator
// is the only shared browser state.
func New(cfg Config, logger *zap.Logger) (*Extractor, error) {
	cfg = cfg.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	policy := DefaultBlockPolicy()
	return &Extractor{
		cfg: cfg,
		nav: &sessionNavigator{
			open: func() (renderSession, error) {
				return newChromedpSession(allocCtx, policy, cfg.UserAgent, cfg.NavTimeout)
			},
		},
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

func newWithNavigator(cfg Config, nav navigator, logger *zap.Logger) *Extractor {
	return &Extractor{cfg: cfg.withDefaults(), nav: nav, logger: logger}
}

// Close cancels the allocator context.
func (e *Extractor) Close() {
	if e == nil || e.allocCancel == nil {
		return
	}
	e.allocCancel()
}

// Extract renders src and returns its plain text. Non-article URLs are
// rejected before any render. Navigation failures retry up to
// cfg.MaxAttempts with a fixed delay; exhaustion yields an empty document.
func (e *Extractor) Extract(ctx context.Context, src digest.CandidateSource) digest.ExtractedDocument {
	doc := digest.ExtractedDocument{
		URL:           src.URL,
		Title:         src.Title,
		PublishedDate: src.PublishedHint,
	}

	if !IsArticleURL(src.URL) {
		e.logger.Debug("skipping non-article url", zap.String("url", src.URL))
		return doc
	}

	if err := e.waitDomainBudget(ctx, src.URL); err != nil {
		e.logger.Warn("domain budget wait failed", zap.String("url", src.URL), zap.Error(err))
		return doc
	}

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		html, err := e.nav.Navigate(ctx, src.URL)
		if err != nil {
			e.logger.Warn("navigation failed",
				zap.String("url", src.URL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if attempt < e.cfg.MaxAttempts {
				e.pause(ctx)
			}
			continue
		}

		text, published, err := cleanHTML(html)
		if err != nil {
			e.logger.Warn("clean html failed", zap.String("url", src.URL), zap.Error(err))
			return doc
		}
		doc.Content = text
		if published != "" {
			doc.PublishedDate = published
		}
		return doc
	}

	return doc
}

func (e *Extractor) pause(ctx context.Context) {
	timer := time.NewTimer(e.cfg.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (e *Extractor) waitDomainBudget(ctx context.Context, rawURL string) error {
	if e.cfg.DomainQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := e.domainLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(e.cfg.DomainQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}

// renderSession is one isolated rendering context. Close tears the context
// down and must run on every exit path, including timeouts.
type renderSession interface {
	Render(ctx context.Context, rawURL string) (string, error)
	Close()
}

// sessionNavigator opens a fresh session per URL and guarantees its
// teardown. Sessions are never reused across calls.
type sessionNavigator struct {
	open func() (renderSession, error)
}

func (n *sessionNavigator) Navigate(ctx context.Context, rawURL string) (string, error) {
	s, err := n.open()
	if err != nil {
		return "", fmt.Errorf("open render session: %w", err)
	}
	defer s.Close()
	return s.Render(ctx, rawURL)
}

// chromedpSession renders pages in a dedicated tab context.
type chromedpSession struct {
	tabCtx    context.Context
	cancelTab context.CancelFunc
	policy    *BlockPolicy
	userAgent string
	timeout   time.Duration
}

func newChromedpSession(allocator context.Context, policy *BlockPolicy, userAgent string, timeout time.Duration) (renderSession, error) {
	tabCtx, cancelTab := chromedp.NewContext(allocator)
	s := &chromedpSession{
		tabCtx:    tabCtx,
		cancelTab: cancelTab,
		policy:    policy,
		userAgent: userAgent,
		timeout:   timeout,
	}
	s.interceptRequests()
	return s, nil
}

func (s *chromedpSession) Render(ctx context.Context, rawURL string) (string, error) {
	taskCtx, cancelTask := context.WithTimeout(s.tabCtx, s.timeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	var html string
	tasks := chromedp.Tasks{
		fetch.Enable(),
		network.Enable(),
	}
	if s.userAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(s.userAgent))
	}
	tasks = append(tasks,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

// Close cancels the tab context, destroying the rendering context.
func (s *chromedpSession) Close() {
	s.cancelTab()
}

// interceptRequests applies the block policy to every paused request.
func (s *chromedpSession) interceptRequests() {
	chromedp.ListenTarget(s.tabCtx, func(ev any) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(s.tabCtx)
			execCtx := cdp.WithExecutor(s.tabCtx, c.Target)
			if s.policy.Allow(paused.ResourceType) {
				_ = fetch.ContinueRequest(paused.RequestID).Do(execCtx)
				return
			}
			_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
		}()
	})
}

// forwardCancel propagates parent cancellation into the chromedp task
// context, which is not derived from it.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
