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

// Package serptrace extracts ranking information from search engine result
// pages. Given a keyword and either a site domain or a specific destination
// URL, it drives a headless browser against the result page, parses the
// rendered document into an ordered, section-classified item list, resolves
// click-tracking redirects to real destinations, and computes the rank of
// the target within that ordering.
//
// The engine performs a fresh page load per invocation and persists nothing;
// callers own the storage of derived ranking history and any retry policy.
package serptrace

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// Engine is the search-result ranking extraction engine. It is safe for
// concurrent use: each check owns an exclusive browser session for its
// lifetime and no state is shared between crawls.
type Engine struct {
	cfg        *Config
	log        *zap.Logger
	filter     *linkFilter
	classifier *sectionClassifier
	expander   *expander
	resolver   *RedirectResolver
	robots     *robotsGate

	// The batch entry points call the single-check operations through these
	// indirections; tests substitute them to exercise batch semantics
	// without a browser.
	siteRankFn func(ctx context.Context, keyword, siteURL string) (*RankResult, error)
	exposureFn func(ctx context.Context, keyword, targetURL string) (*ExposureResult, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger. The default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine builds an engine from the given config merged over the defaults.
// A nil config uses the defaults unchanged.
func NewEngine(userCfg *Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg: mergeConfig(userCfg),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.filter, err = newLinkFilter(e.cfg); err != nil {
		return nil, err
	}
	if e.classifier, err = newSectionClassifier(e.cfg); err != nil {
		return nil, err
	}
	if e.expander, err = newExpander(e.cfg, e.filter, e.log); err != nil {
		return nil, err
	}
	e.resolver = newRedirectResolver(e.cfg, e.log)
	e.robots = newRobotsGate(e.cfg, e.log)
	e.siteRankFn = e.CheckSiteRank
	e.exposureFn = e.CheckURLExposure
	return e, nil
}

// searchURL builds the result page URL for a keyword.
func (e *Engine) searchURL(keyword string) string {
	return fmt.Sprintf(e.cfg.SearchURL, url.QueryEscape(keyword))
}

// loadSERP navigates the session to the keyword's result page, waits for the
// document to settle, and captures the rendered tree.
func (e *Engine) loadSERP(ctx context.Context, s *Session, keyword string) (*Node, error) {
	target := e.searchURL(keyword)
	if e.cfg.RespectRobots && !e.robots.allowed(ctx, target) {
		return nil, crawlError(StageRobots, target, fmt.Errorf("disallowed by robots.txt"))
	}
	if err := s.Navigate(target); err != nil {
		return nil, err
	}
	if err := s.WaitStable(ctx); err != nil {
		return nil, crawlError(StageNavigate, target, err)
	}
	return s.Snapshot(ctx)
}

// CheckSiteRank loads the result page for keyword and returns the 1-based
// position of the first item matching siteURL, within the configured result
// cap. A page where the site does not appear yields a zero-rank result, not
// an error; only structural crawl failures (launch, navigation, snapshot)
// return an error.
func (e *Engine) CheckSiteRank(ctx context.Context, keyword, siteURL string) (*RankResult, error) {
	if keyword == "" {
		return nil, ErrNoKeyword
	}
	if siteURL == "" {
		return nil, ErrNoTarget
	}

	var res *RankResult
	err := e.withSession(ctx, func(s *Session) error {
		doc, err := e.loadSERP(ctx, s, keyword)
		if err != nil {
			return err
		}
		items := extractItems(mainRegion(doc, e.cfg), sidePanel(doc, e.cfg), e.filter, pageExtractOptions(e.cfg))
		if len(items) == 0 {
			// A results page with nothing extractable is a valid no-match
			// outcome, not a crawl failure.
			e.log.Warn("site rank check extracted no items",
				zap.String("keyword", keyword), zap.Error(ErrEmptyExtraction))
			res = &RankResult{}
			return nil
		}
		if err := e.resolveItems(ctx, items); err != nil {
			return err
		}
		r := findSiteRank(items, siteURL, e.cfg.MaxResults)
		res = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("site rank check finished",
		zap.String("keyword", keyword), zap.String("site", siteURL), zap.Int("rank", res.Rank))
	return res, nil
}

// CheckURLExposure loads the result page for keyword, classifies its
// sections, expands the brand-content section when possible, and locates
// targetURL across all classified sections in document order. The returned
// result always carries the full section list so callers can re-match
// against a pinned section.
func (e *Engine) CheckURLExposure(ctx context.Context, keyword, targetURL string) (*ExposureResult, error) {
	if keyword == "" {
		return nil, ErrNoKeyword
	}
	if targetURL == "" {
		return nil, ErrNoTarget
	}

	var res *ExposureResult
	err := e.withSession(ctx, func(s *Session) error {
		doc, err := e.loadSERP(ctx, s, keyword)
		if err != nil {
			return err
		}
		secs := discoverSections(doc, e.cfg, e.classifier, e.filter)
		if len(secs) == 0 {
			e.log.Warn("url exposure check found no classified sections",
				zap.String("keyword", keyword), zap.Error(ErrNoSections))
			res = &ExposureResult{}
			return nil
		}

		for i := range secs {
			if secs[i].section.Name == SectionBrandContent {
				secs[i].section.Items = e.expander.expand(ctx, s, secs[i])
			}
		}

		sections := make([]Section, len(secs))
		for i := range secs {
			sections[i] = secs[i].section
		}
		groups := make([][]ResultItem, len(sections))
		for i := range sections {
			groups[i] = sections[i].Items
		}
		if err := e.resolveItems(ctx, groups...); err != nil {
			return err
		}

		agg := aggregateExposure(sections, targetURL)
		res = &agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("url exposure check finished",
		zap.String("keyword", keyword), zap.String("target", targetURL),
		zap.Bool("found", res.Found), zap.Int("overallRank", res.OverallRank))
	return res, nil
}

// CheckSiteRankBatch processes site-rank requests with per-item failure
// isolation: one item's crawl error becomes its error record and never
// aborts the remaining items. Requests run sequentially unless the config
// allows a small pool of concurrent sessions.
func (e *Engine) CheckSiteRankBatch(ctx context.Context, reqs []SiteRankRequest) []SiteRankBatchResult {
	results := make([]SiteRankBatchResult, len(reqs))
	e.runBatch(ctx, len(reqs), func(i int) {
		req := reqs[i]
		r, err := e.siteRankFn(ctx, req.Keyword, req.SiteURL)
		if err != nil {
			e.log.Warn("batch item failed",
				zap.String("id", req.ID), zap.String("keyword", req.Keyword), zap.Error(err))
			results[i] = SiteRankBatchResult{ID: req.ID, Err: err.Error()}
			return
		}
		results[i] = SiteRankBatchResult{ID: req.ID, Result: r}
	})
	return results
}

// CheckURLExposureBatch processes URL-exposure requests with per-item
// failure isolation, applying each request's pinned-section override to the
// crawl result.
func (e *Engine) CheckURLExposureBatch(ctx context.Context, reqs []ExposureRequest) []ExposureBatchResult {
	results := make([]ExposureBatchResult, len(reqs))
	e.runBatch(ctx, len(reqs), func(i int) {
		req := reqs[i]
		r, err := e.exposureFn(ctx, req.Keyword, req.TargetURL)
		if err != nil {
			e.log.Warn("batch item failed",
				zap.String("id", req.ID), zap.String("keyword", req.Keyword), zap.Error(err))
			results[i] = ExposureBatchResult{ID: req.ID, Err: err.Error()}
			return
		}
		if req.PinnedSection != "" {
			overridden := OverrideSection(*r, req.PinnedSection, req.TargetURL)
			r = &overridden
		}
		results[i] = ExposureBatchResult{ID: req.ID, Result: r}
	})
	return results
}

// runBatch executes n items either strictly sequentially (the default, one
// live browser session at a time) or on a bounded session pool.
func (e *Engine) runBatch(ctx context.Context, n int, run func(i int)) {
	if e.cfg.BatchParallelism <= 1 {
		for i := 0; i < n; i++ {
			run(i)
		}
		return
	}
	pool := NewWorkerPool(ctx, e.cfg.BatchParallelism, n)
	for i := 0; i < n; i++ {
		i := i
		if err := pool.Submit(func() { run(i) }); err != nil {
			run(i)
		}
	}
	pool.Close()
}
