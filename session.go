// Copyright 2025 Serptrace Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serptrace

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// settlePollInterval is the spacing of the mutation-quiescence polls.
const settlePollInterval = 250 * time.Millisecond

// Session is one headless browser instance with one page, owned exclusively
// by a single crawl for its whole lifetime. Sessions are only obtained
// through Engine.withSession, which guarantees teardown on every exit path.
type Session struct {
	ctx context.Context
	cfg *Config
	log *zap.Logger
}

// withSession acquires a browser+page pair, runs fn against it, and tears
// the browser down unconditionally. Launch failures surface as a CrawlError
// before fn runs. Each crawl gets a fresh browser process; nothing is shared
// across concurrent sessions.
func (e *Engine) withSession(ctx context.Context, fn func(*Session) error) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !e.cfg.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(e.cfg.ViewportWidth, e.cfg.ViewportHeight),
		chromedp.UserAgent(e.cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Start the browser eagerly so a failed launch is reported as a launch
	// failure, not as a timeout of the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		return crawlError(StageLaunch, "", err)
	}

	return fn(&Session{ctx: browserCtx, cfg: e.cfg, log: e.log})
}

// Navigate loads the given URL and waits for the document body under the
// navigation timeout.
func (s *Session) Navigate(url string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.cfg.NavigationTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return crawlError(StageNavigate, url, err)
	}
	return nil
}

// WaitStable waits for the document to stop mutating. Result pages keep
// rendering after the network goes idle, so body readiness alone is not
// enough. The document is hashed at each poll; two consecutive identical
// hashes mean quiescence. When the page never stabilises within the settle
// budget the full budget has elapsed, which degrades to the fixed-delay
// behaviour rather than waiting forever.
func (s *Session) WaitStable(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.SettleDelay)
	var lastHash uint64
	seeded := false

	for {
		var doc string
		if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &doc, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("stability poll failed: %w", err)
		}
		h := xxhash.Sum64String(doc)
		if seeded && h == lastHash {
			return nil
		}
		lastHash, seeded = h, true

		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.log.Debug("document did not stabilise within settle budget",
				zap.Duration("budget", s.cfg.SettleDelay))
			return nil
		}
		wait := settlePollInterval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Snapshot captures the rendered element tree in one evaluation round trip.
func (s *Session) Snapshot(ctx context.Context) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var root Node
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(snapshotJS, &root)); err != nil {
		return nil, crawlError(StageSnapshot, "", err)
	}
	root.fixParents()
	return &root, nil
}

// ClickIndex clicks the element at the given document-order index. Elements
// revealed by earlier interactions shift later indexes, so callers must
// re-snapshot after every click.
func (s *Session) ClickIndex(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx, chromedp.Evaluate(fmt.Sprintf(clickJS, index, index), nil))
}

const clickJS = `(() => {
	const el = document.querySelectorAll('*')[%d];
	if (!el) throw new Error('no element at index %d');
	el.click();
})()`
