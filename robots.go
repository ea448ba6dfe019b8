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
	"sync"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// robotsGate is the optional politeness check consulted before navigating to
// the result page. Robots data is fetched once per host and cached for the
// engine's lifetime; a failed fetch allows the crawl (robots.txt absence is
// permission, not denial).
type robotsGate struct {
	ua     string
	client *http.Client
	log    *zap.Logger

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

func newRobotsGate(cfg *Config, log *zap.Logger) *robotsGate {
	return &robotsGate{
		ua:     cfg.UserAgent,
		client: &http.Client{Timeout: cfg.RedirectTimeout},
		log:    log,
		groups: map[string]*robotstxt.Group{},
	}
}

// allowed reports whether robots.txt permits fetching the given URL.
func (g *robotsGate) allowed(ctx context.Context, rawURL string) bool {
	u, err := urlParser.Parse(rawURL)
	if err != nil {
		return true
	}
	group := g.group(ctx, u.Scheme(), u.Hostname())
	if group == nil {
		return true
	}
	return group.Test(u.Pathname())
}

func (g *robotsGate) group(ctx context.Context, scheme, host string) *robotstxt.Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	if group, ok := g.groups[host]; ok {
		return group
	}

	var group *robotstxt.Group
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err == nil {
		req.Header.Set("User-Agent", g.ua)
		if resp, doErr := g.client.Do(req); doErr == nil {
			defer resp.Body.Close()
			if robots, parseErr := robotstxt.FromResponse(resp); parseErr == nil {
				group = robots.FindGroup(g.ua)
			}
		}
	}
	if group == nil {
		g.log.Debug("robots.txt unavailable, allowing crawl", zap.String("host", host))
	}
	g.groups[host] = group
	return group
}
