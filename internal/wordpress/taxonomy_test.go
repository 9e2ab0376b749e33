// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

var liveCategories = []Category{
	{ID: 1, Name: "Technology"},
	{ID: 2, Name: "Business"},
	{ID: 3, Name: "Travel"},
	{ID: 4, Name: "Finance"},
}

func TestResolveCategoriesExactMatch(t *testing.T) {
	ids := ResolveCategories([]string{"business"}, liveCategories, "", "")
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("ids: got %v, want [2]", ids)
	}
}

func TestResolveCategoriesSynonymMatch(t *testing.T) {
	// "ai" and "Technology" share a synonym group.
	ids := ResolveCategories([]string{"ai"}, liveCategories, "", "")
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ids: got %v, want [1]", ids)
	}
}

func TestResolveCategoriesSubstringMatch(t *testing.T) {
	ids := ResolveCategories([]string{"biz"}, []Category{{ID: 9, Name: "Small Biz Tips"}}, "", "")
	if len(ids) != 1 || ids[0] != 9 {
		t.Errorf("ids: got %v, want [9]", ids)
	}
}

func TestResolveCategoriesDedupPreservesOrder(t *testing.T) {
	ids := ResolveCategories([]string{"travel", "tech", "Travel"}, liveCategories, "", "")
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("ids: got %v, want [3 1]", ids)
	}
}

func TestResolveCategoriesContentHeuristics(t *testing.T) {
	ids := ResolveCategories([]string{"gardening"}, liveCategories,
		"Automating Your Workflow", "How AI and automation change daily work.")
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ids: got %v, want [1] (technology via content keywords)", ids)
	}
}

func TestResolveCategoriesFallsBackToFirstLive(t *testing.T) {
	ids := ResolveCategories([]string{"gardening"}, liveCategories, "Growing Roses", "Soil and sunlight basics.")
	if len(ids) != 1 || ids[0] != liveCategories[0].ID {
		t.Errorf("ids: got %v, want first live category", ids)
	}
}

func TestResolveCategoriesEmptyLiveList(t *testing.T) {
	if ids := ResolveCategories([]string{"tech"}, nil, "t", "c"); ids != nil {
		t.Errorf("ids: got %v, want nil", ids)
	}
}

// tagServer fakes the WordPress tag endpoints: search returns existing
// tags, create assigns incrementing IDs, and the bare list returns
// everything created so far.
type tagServer struct {
	mu      sync.Mutex
	nextID  int
	tags    []Tag
	failFor map[string]bool // tag names whose create calls fail

	inFlight    int32
	maxInFlight int32
}

func newTagServer() *tagServer {
	return &tagServer{nextID: 100, failFor: map[string]bool{}}
}

func (s *tagServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&s.inFlight, 1)
		defer atomic.AddInt32(&s.inFlight, -1)
		for {
			max := atomic.LoadInt32(&s.maxInFlight)
			if cur <= max || atomic.CompareAndSwapInt32(&s.maxInFlight, max, cur) {
				break
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			search := r.URL.Query().Get("search")
			var matched []Tag
			for _, tag := range s.tags {
				if search == "" || tag.Name == search {
					matched = append(matched, tag)
				}
			}
			if matched == nil {
				matched = []Tag{}
			}
			json.NewEncoder(w).Encode(matched)

		case http.MethodPost:
			var body struct {
				Name string `json:"name"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if s.failFor[body.Name] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			tag := Tag{ID: s.nextID, Name: body.Name}
			s.nextID++
			s.tags = append(s.tags, tag)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(tag)
		}
	}
}

func newTagTestServer(ts *tagServer) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/tags", ts.handler())
	return httptest.NewServer(mux)
}

func TestResolveTagsCreatesMissing(t *testing.T) {
	ts := newTagServer()
	srv := newTagTestServer(ts)
	defer srv.Close()

	ids := testClient(srv).ResolveTags(context.Background(), []string{"golang", "testing"})
	if len(ids) != 2 {
		t.Fatalf("ids: got %v, want 2 tags", ids)
	}
}

func TestResolveTagsReusesExisting(t *testing.T) {
	ts := newTagServer()
	ts.tags = append(ts.tags, Tag{ID: 7, Name: "golang"})
	srv := newTagTestServer(ts)
	defer srv.Close()

	ids := testClient(srv).ResolveTags(context.Background(), []string{"golang"})
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("ids: got %v, want [7]", ids)
	}
}

func TestResolveTagsIndividualFailuresDegrade(t *testing.T) {
	ts := newTagServer()
	ts.failFor["broken"] = true
	srv := newTagTestServer(ts)
	defer srv.Close()

	ids := testClient(srv).ResolveTags(context.Background(), []string{"good", "broken", "fine"})
	if len(ids) != 2 {
		t.Errorf("ids: got %v, want 2 surviving tags", ids)
	}
}

func TestResolveTagsBoundedConcurrency(t *testing.T) {
	ts := newTagServer()
	srv := newTagTestServer(ts)
	defer srv.Close()

	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("tag-%d", i)
	}

	ids := testClient(srv).ResolveTags(context.Background(), names)
	if len(ids) != 20 {
		t.Fatalf("ids: got %d, want 20", len(ids))
	}
	if max := atomic.LoadInt32(&ts.maxInFlight); max > tagConcurrency {
		t.Errorf("observed %d concurrent tag calls, limit is %d", max, tagConcurrency)
	}
}

func TestResolveTagsEmptyInput(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if ids := testClient(srv).ResolveTags(context.Background(), nil); ids != nil {
		t.Errorf("ids: got %v, want nil", ids)
	}
}
