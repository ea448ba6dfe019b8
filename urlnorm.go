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
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// NormalizeURL converts a raw URL into its canonical comparison form:
// scheme stripped, one leading "www." stripped, one trailing slash stripped,
// lowercased. The operation is idempotent.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ToLower(s)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, "/")
	return s
}

// MatchURL reports whether two URLs denote the same destination. Both sides
// are normalized first; they match when either normalized form contains the
// other. Containment rather than equality is deliberate: registered targets
// are often a path prefix of the indexed URL, or carry extra tracking
// segments. The trade-off is occasional false positives when a short
// registered path substring-matches an unrelated longer URL.
func MatchURL(a, b string) bool {
	na, nb := NormalizeURL(a), NormalizeURL(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// hostOf extracts the lowercased hostname of a URL, without a leading "www.".
// Unparseable input degrades to string canonicalisation of the authority part.
func hostOf(raw string) string {
	if u, err := urlParser.Parse(raw); err == nil {
		return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}
	s := NormalizeURL(raw)
	for _, sep := range []string{"/", "?", "#"} {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	return s
}

// schemeOf returns the lowercased scheme of a URL, or "" when absent.
func schemeOf(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return strings.ToLower(raw[:i])
	}
	return ""
}

// hostMatches reports whether host equals candidate or is a subdomain of it.
func hostMatches(host, candidate string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	candidate = strings.TrimPrefix(strings.ToLower(candidate), "www.")
	return host == candidate || strings.HasSuffix(host, "."+candidate)
}
