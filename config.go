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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// HeadingRule maps a substring of a section heading to a canonical name.
// Rules are evaluated in order; the first match wins.
type HeadingRule struct {
	Contains string      `mapstructure:"contains"`
	Name     SectionName `mapstructure:"name"`
}

// Config is the full tuning surface of the engine. The result page's markup
// and the excluded-domain list drift over time, so everything the heuristics
// key on is configurable rather than hard-coded.
type Config struct {
	// SearchURL is a printf template producing the result page URL for a
	// query-escaped keyword.
	SearchURL string `mapstructure:"search_url"`
	// EngineHosts are hostnames belonging to the search engine itself.
	// Links into these hosts are never results.
	EngineHosts []string `mapstructure:"engine_hosts"`
	// TrackingHosts serve indirect click-tracking redirects instead of
	// content. Items on these hosts go through the redirect resolver.
	TrackingHosts []string `mapstructure:"tracking_hosts"`
	// AdClickPatterns are glob patterns for internal ad-click redirect URLs.
	AdClickPatterns []string `mapstructure:"ad_click_patterns"`
	// LightboxPattern is a glob matching the internal lightbox API URLs used
	// by the brand-content "show more" control.
	LightboxPattern string `mapstructure:"lightbox_pattern"`
	// MoreLabel is the literal anchor text of the "show more" control.
	MoreLabel string `mapstructure:"more_label"`

	// MainRegionID and SidePanelID identify the results region and the side
	// panel excluded by the geometry strategy.
	MainRegionID string `mapstructure:"main_region_id"`
	SidePanelID  string `mapstructure:"side_panel_id"`
	// SectionAttrs are the attributes probed, in order, for a section's raw
	// identifier. A section with none of them falls back to its first class
	// token.
	SectionAttrs []string `mapstructure:"section_attrs"`
	// SectionIDMap maps exact raw identifiers to canonical section names.
	SectionIDMap map[string]SectionName `mapstructure:"section_id_map"`
	// ViewFamilyPattern matches identifier families that classify as View,
	// with the heading text kept as a sub-label.
	ViewFamilyPattern string `mapstructure:"view_family_pattern"`
	// HeadingRules classify sections by heading substring when the
	// identifier is unknown.
	HeadingRules []HeadingRule `mapstructure:"heading_rules"`
	// PaidMarkers are identifier substrings marking paid/sponsored
	// placements, excluded before classification.
	PaidMarkers []string `mapstructure:"paid_markers"`

	// Browser identity and timing.
	UserAgent      string `mapstructure:"user_agent"`
	ViewportWidth  int    `mapstructure:"viewport_width"`
	ViewportHeight int    `mapstructure:"viewport_height"`
	// Headful runs a visible browser for local debugging.
	Headful           bool          `mapstructure:"headful"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	// SettleDelay bounds the post-load quiescence wait. The engine polls the
	// document for mutation quiescence and stops early once it stabilises;
	// the delay is the worst case, not a fixed sleep.
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	RedirectTimeout time.Duration `mapstructure:"redirect_timeout"`
	RespectRobots   bool          `mapstructure:"respect_robots"`

	// Extraction thresholds.
	MaxResults           int     `mapstructure:"max_results"`
	MinContainerHeight   float64 `mapstructure:"min_container_height"`
	MinContainerChildren int     `mapstructure:"min_container_children"`
	MinSeparatorHeight   float64 `mapstructure:"min_separator_height"`
	MinAnchorText        int     `mapstructure:"min_anchor_text"`
	MinAnchorTextLoose   int     `mapstructure:"min_anchor_text_loose"`
	SuppressWindow       float64 `mapstructure:"suppress_window"`
	CardMinHeight        float64 `mapstructure:"card_min_height"`
	CardMaxHeight        float64 `mapstructure:"card_max_height"`
	MinOverlayAnchors    int     `mapstructure:"min_overlay_anchors"`

	// Concurrency. BatchParallelism is the number of concurrent browser
	// sessions in a batch; RedirectParallelism bounds in-crawl redirect
	// resolution.
	BatchParallelism    int `mapstructure:"batch_parallelism"`
	RedirectParallelism int `mapstructure:"redirect_parallelism"`
}

// NewDefaultConfig returns a Config with sensible defaults for the Naver
// result page. Every value can be overridden by a user config, a config
// file, or SERPTRACE_* environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		SearchURL:       "https://search.naver.com/search.naver?query=%s",
		EngineHosts:     []string{"search.naver.com", "ad.search.naver.com"},
		TrackingHosts:   []string{"adcr.naver.com"},
		AdClickPatterns: []string{"*adcr.naver.com/adcr*", "*searchad.naver.com*", "*ader.naver.com*"},
		LightboxPattern: "*api/lightbox*",
		MoreLabel:       "더보기",

		MainRegionID: "main_pack",
		SidePanelID:  "sub_pack",
		SectionAttrs: []string{"data-section", "id"},
		SectionIDMap: map[string]SectionName{
			"brand_content":     SectionBrandContent,
			"brandcontent":      SectionBrandContent,
			"view":              SectionView,
			"view_result":       SectionView,
			"influencer":        SectionInfluencer,
			"influencer_result": SectionInfluencer,
			"web":               SectionWeb,
			"web_result":        SectionWeb,
			"news":              SectionNews,
			"news_result":       SectionNews,
		},
		ViewFamilyPattern: `^view[-_]?result[-_]?\d+$`,
		HeadingRules: []HeadingRule{
			{Contains: "브랜드", Name: SectionBrandContent},
			{Contains: "VIEW", Name: SectionView},
			{Contains: "뷰", Name: SectionView},
			{Contains: "인플루언서", Name: SectionInfluencer},
			{Contains: "뉴스", Name: SectionNews},
			{Contains: "웹사이트", Name: SectionWeb},
		},
		PaidMarkers: []string{"power_link", "nad_", "brand_ad", "splink"},

		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		NavigationTimeout: 30 * time.Second,
		SettleDelay:       3 * time.Second,
		RedirectTimeout:   10 * time.Second,
		RespectRobots:     false,

		MaxResults:           50,
		MinContainerHeight:   500,
		MinContainerChildren: 10,
		MinSeparatorHeight:   2,
		MinAnchorText:        5,
		MinAnchorTextLoose:   8,
		SuppressWindow:       120,
		CardMinHeight:        50,
		CardMaxHeight:        500,
		MinOverlayAnchors:    3,

		BatchParallelism:    1,
		RedirectParallelism: 4,
	}
}

// mergeConfig overlays the non-zero fields of user onto a fresh default
// config. Boolean fields merge only when they differ from the default false.
func mergeConfig(user *Config) *Config {
	cfg := NewDefaultConfig()
	if user == nil {
		return cfg
	}
	if user.SearchURL != "" {
		cfg.SearchURL = user.SearchURL
	}
	if user.EngineHosts != nil {
		cfg.EngineHosts = user.EngineHosts
	}
	if user.TrackingHosts != nil {
		cfg.TrackingHosts = user.TrackingHosts
	}
	if user.AdClickPatterns != nil {
		cfg.AdClickPatterns = user.AdClickPatterns
	}
	if user.LightboxPattern != "" {
		cfg.LightboxPattern = user.LightboxPattern
	}
	if user.MoreLabel != "" {
		cfg.MoreLabel = user.MoreLabel
	}
	if user.MainRegionID != "" {
		cfg.MainRegionID = user.MainRegionID
	}
	if user.SidePanelID != "" {
		cfg.SidePanelID = user.SidePanelID
	}
	if user.SectionAttrs != nil {
		cfg.SectionAttrs = user.SectionAttrs
	}
	if user.SectionIDMap != nil {
		cfg.SectionIDMap = user.SectionIDMap
	}
	if user.ViewFamilyPattern != "" {
		cfg.ViewFamilyPattern = user.ViewFamilyPattern
	}
	if user.HeadingRules != nil {
		cfg.HeadingRules = user.HeadingRules
	}
	if user.PaidMarkers != nil {
		cfg.PaidMarkers = user.PaidMarkers
	}
	if user.UserAgent != "" {
		cfg.UserAgent = user.UserAgent
	}
	if user.ViewportWidth != 0 {
		cfg.ViewportWidth = user.ViewportWidth
	}
	if user.ViewportHeight != 0 {
		cfg.ViewportHeight = user.ViewportHeight
	}
	if user.NavigationTimeout != 0 {
		cfg.NavigationTimeout = user.NavigationTimeout
	}
	if user.SettleDelay != 0 {
		cfg.SettleDelay = user.SettleDelay
	}
	if user.RedirectTimeout != 0 {
		cfg.RedirectTimeout = user.RedirectTimeout
	}
	if user.RespectRobots {
		cfg.RespectRobots = true
	}
	if user.MaxResults != 0 {
		cfg.MaxResults = user.MaxResults
	}
	if user.MinContainerHeight != 0 {
		cfg.MinContainerHeight = user.MinContainerHeight
	}
	if user.MinContainerChildren != 0 {
		cfg.MinContainerChildren = user.MinContainerChildren
	}
	if user.MinSeparatorHeight != 0 {
		cfg.MinSeparatorHeight = user.MinSeparatorHeight
	}
	if user.MinAnchorText != 0 {
		cfg.MinAnchorText = user.MinAnchorText
	}
	if user.MinAnchorTextLoose != 0 {
		cfg.MinAnchorTextLoose = user.MinAnchorTextLoose
	}
	if user.SuppressWindow != 0 {
		cfg.SuppressWindow = user.SuppressWindow
	}
	if user.CardMinHeight != 0 {
		cfg.CardMinHeight = user.CardMinHeight
	}
	if user.CardMaxHeight != 0 {
		cfg.CardMaxHeight = user.CardMaxHeight
	}
	if user.MinOverlayAnchors != 0 {
		cfg.MinOverlayAnchors = user.MinOverlayAnchors
	}
	if user.BatchParallelism != 0 {
		cfg.BatchParallelism = user.BatchParallelism
	}
	if user.RedirectParallelism != 0 {
		cfg.RedirectParallelism = user.RedirectParallelism
	}
	if user.Headful {
		cfg.Headful = true
	}
	return cfg
}

var envMap = map[string]func(*Config, string){
	"SERPTRACE_SEARCH_URL": func(c *Config, val string) {
		c.SearchURL = val
	},
	"SERPTRACE_USER_AGENT": func(c *Config, val string) {
		c.UserAgent = val
	},
	"SERPTRACE_NAVIGATION_TIMEOUT": func(c *Config, val string) {
		if d, err := time.ParseDuration(val); err == nil {
			c.NavigationTimeout = d
		}
	},
	"SERPTRACE_SETTLE_DELAY": func(c *Config, val string) {
		if d, err := time.ParseDuration(val); err == nil {
			c.SettleDelay = d
		}
	},
	"SERPTRACE_MAX_RESULTS": func(c *Config, val string) {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.MaxResults = n
		}
	},
	"SERPTRACE_BATCH_PARALLELISM": func(c *Config, val string) {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.BatchParallelism = n
		}
	},
	"SERPTRACE_RESPECT_ROBOTS": func(c *Config, val string) {
		c.RespectRobots = isYesString(val)
	},
	"SERPTRACE_HEADFUL": func(c *Config, val string) {
		c.Headful = isYesString(val)
	},
}

// applyEnv applies SERPTRACE_* environment overrides to the config.
func applyEnv(cfg *Config) {
	for _, pair := range os.Environ() {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || !strings.HasPrefix(kv[0], "SERPTRACE_") {
			continue
		}
		if apply, ok := envMap[kv[0]]; ok {
			apply(cfg, kv[1])
		}
	}
}

func isYesString(s string) bool {
	switch strings.ToLower(s) {
	case "1", "yes", "true", "y":
		return true
	}
	return false
}

// LoadConfig reads a YAML config file into a Config. Missing file is not an
// error when path is empty; environment overrides are applied on top either
// way.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		var user Config
		if err := v.Unmarshal(&user); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg = mergeConfig(&user)
	}
	applyEnv(cfg)
	return cfg, nil
}
