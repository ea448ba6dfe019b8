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
	"net/http"

	"go.uber.org/zap"
)

// RedirectResolver resolves indirect click-tracking URLs to their real
// destinations by reading the Location header of a single redirect hop,
// without executing the target page. It runs out-of-band from the browser
// session: a plain HTTP round trip is far cheaper than a page load.
type RedirectResolver struct {
	client *http.Client
	ua     string
	log    *zap.Logger
}

func newRedirectResolver(cfg *Config, log *zap.Logger) *RedirectResolver {
	return &RedirectResolver{
		client: &http.Client{
			Timeout: cfg.RedirectTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// One hop only; read the Location header ourselves.
				return http.ErrUseLastResponse
			},
		},
		ua:  cfg.UserAgent,
		log: log,
	}
}

// Resolve returns the real destination behind a tracking URL. Any failure
// (network error, non-redirect status, missing Location header) falls back
// to the original indirect URL rather than failing the crawl.
func (r *RedirectResolver) Resolve(ctx context.Context, trackingURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackingURL, nil)
	if err != nil {
		r.log.Warn("redirect resolution skipped, bad URL",
			zap.String("url", trackingURL), zap.Error(err))
		return trackingURL
	}
	req.Header.Set("User-Agent", r.ua)

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("redirect resolution failed, keeping indirect URL",
			zap.String("url", trackingURL), zap.Error(err))
		return trackingURL
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		r.log.Warn("tracking URL did not redirect, keeping indirect URL",
			zap.String("url", trackingURL), zap.Int("status", resp.StatusCode))
		return trackingURL
	}
	location := resp.Header.Get("Location")
	if location == "" {
		r.log.Warn("redirect without Location header, keeping indirect URL",
			zap.String("url", trackingURL))
		return trackingURL
	}
	return location
}

// resolveItems rewrites every tracking-host item in place to its real
// destination. Items fan out on a bounded worker pool and the call returns
// only after all resolutions finish, since rank aggregation needs final
// destination URLs to match correctly.
func (e *Engine) resolveItems(ctx context.Context, groups ...[]ResultItem) error {
	var targets []*ResultItem
	for _, items := range groups {
		for i := range items {
			if e.filter.isTracking(items[i].URL) {
				targets = append(targets, &items[i])
			}
		}
	}
	if len(targets) == 0 {
		return nil
	}

	pool := NewWorkerPool(ctx, e.cfg.RedirectParallelism, len(targets))
	for _, item := range targets {
		item := item
		if err := pool.Submit(func() {
			resolved := e.resolver.Resolve(ctx, item.URL)
			if resolved != item.URL {
				item.URL = resolved
				item.Domain = hostOf(resolved)
			}
		}); err != nil {
			pool.Close()
			return fmt.Errorf("redirect resolution aborted: %w", err)
		}
	}
	pool.Close()
	return nil
}
