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
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/adcr":
			w.Header().Set("Location", "https://real.example.com/landing")
			w.WriteHeader(http.StatusFound)
		case "/noredirect":
			w.WriteHeader(http.StatusOK)
		case "/nolocation":
			w.WriteHeader(http.StatusFound)
		}
	}))
	defer srv.Close()

	r := newRedirectResolver(NewDefaultConfig(), zap.NewNop())

	t.Run("SingleHop", func(t *testing.T) {
		got := r.Resolve(context.Background(), srv.URL+"/adcr")
		if got != "https://real.example.com/landing" {
			t.Errorf("Resolve() = %q, want the Location target", got)
		}
	})

	t.Run("NonRedirectStatus_KeepsOriginal", func(t *testing.T) {
		url := srv.URL + "/noredirect"
		if got := r.Resolve(context.Background(), url); got != url {
			t.Errorf("Resolve() = %q, want the original URL", got)
		}
	})

	t.Run("MissingLocation_KeepsOriginal", func(t *testing.T) {
		url := srv.URL + "/nolocation"
		if got := r.Resolve(context.Background(), url); got != url {
			t.Errorf("Resolve() = %q, want the original URL", got)
		}
	})

	t.Run("UnreachableHost_KeepsOriginal", func(t *testing.T) {
		url := "http://127.0.0.1:1/adcr"
		if got := r.Resolve(context.Background(), url); got != url {
			t.Errorf("Resolve() = %q, want the original URL", got)
		}
	})
}

func TestResolveItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://real.example.com"+r.URL.Path)
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	engine, err := NewEngine(&Config{TrackingHosts: []string{"127.0.0.1"}})
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	items := []ResultItem{
		{URL: srv.URL + "/a", Domain: "127.0.0.1"},
		{URL: "https://direct.example.com/b", Domain: "direct.example.com"},
		{URL: srv.URL + "/c", Domain: "127.0.0.1"},
	}
	if err := engine.resolveItems(context.Background(), items); err != nil {
		t.Fatalf("resolveItems() failed: %v", err)
	}

	if items[0].URL != "https://real.example.com/a" || items[0].Domain != "real.example.com" {
		t.Errorf("items[0] not rewritten in place: %+v", items[0])
	}
	if items[1].URL != "https://direct.example.com/b" {
		t.Errorf("non-tracking item must stay untouched: %+v", items[1])
	}
	if items[2].URL != "https://real.example.com/c" {
		t.Errorf("items[2] not rewritten in place: %+v", items[2])
	}
}
