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

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"full https URL", "https://www.example.com/path/", "example.com/path"},
		{"http scheme stripped", "http://example.com", "example.com"},
		{"bare domain unchanged", "example.com", "example.com"},
		{"www without scheme", "www.blog.naver.com/post", "blog.naver.com/post"},
		{"uppercase lowered", "HTTPS://Example.COM/Path", "example.com/path"},
		{"single trailing slash", "https://example.com/", "example.com"},
		{"surrounding whitespace", "  https://example.com  ", "example.com"},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
			// Normalizing an already normalized URL must be a no-op
			if again := NormalizeURL(got); again != got {
				t.Errorf("NormalizeURL is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestMatchURL(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "https://example.com", "https://example.com", true},
		{"scheme and www ignored", "https://www.example.com", "http://example.com", true},
		{"registered prefix of indexed URL", "https://blog.naver.com/foodie/223", "blog.naver.com", true},
		{"indexed URL shorter than registered", "blog.naver.com", "https://blog.naver.com/foodie/223", true},
		{"different domains", "https://example.com", "https://example.org", false},
		{"empty left side", "", "example.com", false},
		{"empty right side", "example.com", "", false},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchURL(tt.a, tt.b); got != tt.want {
				t.Errorf("MatchURL(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Containment matching is symmetric
			if got := MatchURL(tt.b, tt.a); got != tt.want {
				t.Errorf("MatchURL(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.example.com/path?q=1", "example.com"},
		{"https://blog.naver.com/foodie", "blog.naver.com"},
		{"example.com/path", "example.com"},
	}
	for _, tt := range tests {
		if got := hostOf(tt.input); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHostMatches(t *testing.T) {
	tests := []struct {
		host, candidate string
		want            bool
	}{
		{"search.naver.com", "search.naver.com", true},
		{"m.search.naver.com", "search.naver.com", true},
		{"search.naver.com", "naver.com", true},
		{"notnaver.com", "naver.com", false},
		{"www.example.com", "example.com", true},
	}
	for _, tt := range tests {
		if got := hostMatches(tt.host, tt.candidate); got != tt.want {
			t.Errorf("hostMatches(%q, %q) = %v, want %v", tt.host, tt.candidate, got, tt.want)
		}
	}
}
