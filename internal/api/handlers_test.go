package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/annokit/core/ann"
	"github.com/FocuswithJustin/annokit/core/formats"
	"github.com/FocuswithJustin/annokit/internal/catalog"
	"github.com/FocuswithJustin/annokit/internal/snapshot"
)

// decode re-marshals a response payload into v.
func decode(t *testing.T, data any, v any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatal(err)
	}
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, Config{Version: "1.2.3"})
	_, resp := do(t, s, http.MethodGet, "/health", nil)

	var info HealthInfo
	decode(t, resp.Data, &info)
	if info.Status != "healthy" || info.Version != "1.2.3" || info.Documents != 1 || info.SQLite == "" {
		t.Errorf("health = %+v", info)
	}
}

func TestHandleFormats(t *testing.T) {
	s := testServer(t, Config{})
	_, resp := do(t, s, http.MethodGet, "/formats", nil)

	var profiles []formats.Profile
	decode(t, resp.Data, &profiles)
	if len(profiles) != len(formats.List()) || resp.Meta.Total != len(profiles) {
		t.Errorf("got %d profiles, total %d", len(profiles), resp.Meta.Total)
	}

	_, resp = do(t, s, http.MethodGet, "/formats/XRA", nil)
	var p formats.Profile
	decode(t, resp.Data, &p)
	if p.Name != formats.Native || !p.Capabilities.HierarchySupport {
		t.Errorf("profile = %+v", p)
	}
}

func TestHandleSearch(t *testing.T) {
	s := testServer(t, Config{})

	tests := []struct {
		target string
		code   int
		want   []string
	}{
		{"/search", http.StatusOK, []string{"the", "cat", "sleeps"}},
		{"/search?tag=cat", http.StatusOK, []string{"cat"}},
		{"/search?from=1.5&to=2.5", http.StatusOK, []string{"cat", "sleeps"}},
		{"/search?limit=1", http.StatusOK, []string{"the"}},
		{"/search?limit=0", http.StatusBadRequest, nil},
		{"/search?from=soon", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w, resp := do(t, s, http.MethodGet, tt.target, nil)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			if tt.code != http.StatusOK {
				if resp.Error == nil || resp.Error.Code != "INVALID_PARAMS" {
					t.Errorf("error = %+v", resp.Error)
				}
				return
			}
			var hits []catalog.Hit
			decode(t, resp.Data, &hits)
			if len(hits) != len(tt.want) {
				t.Fatalf("hits = %+v, want %v", hits, tt.want)
			}
			for i, h := range hits {
				if h.Label != tt.want[i] {
					t.Errorf("hit %d = %q, want %q", i, h.Label, tt.want[i])
				}
			}
		})
	}
}

func TestHandleDocuments(t *testing.T) {
	s := testServer(t, Config{})

	_, resp := do(t, s, http.MethodGet, "/documents", nil)
	var docs []catalog.Document
	decode(t, resp.Data, &docs)
	if len(docs) != 1 || docs[0].Path != "a.json" {
		t.Fatalf("documents = %+v", docs)
	}

	if w, _ := do(t, s, http.MethodDelete, "/documents", nil); w.Code != http.StatusBadRequest {
		t.Errorf("delete without path: status %d", w.Code)
	}
	if w, _ := do(t, s, http.MethodDelete, "/documents?path=a.json", nil); w.Code != http.StatusOK {
		t.Errorf("delete: status %d", w.Code)
	}
	if w, _ := do(t, s, http.MethodDelete, "/documents?path=a.json", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d", w.Code)
	}
}

func TestHandleCheck(t *testing.T) {
	s := testServer(t, Config{})

	trs := wordsTranscription(t, "a", "b")
	if _, err := trs.CreateTier("Other"); err != nil {
		t.Fatal(err)
	}
	body, err := snapshot.Marshal(trs)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		target string
		body   []byte
		code   int
		class  formats.LossClass
		errStr string
	}{
		{"native", "/check", body, http.StatusOK, formats.LossL0, ""},
		{"srt drops a tier", "/check?format=srt", body, http.StatusOK, formats.LossL3, ""},
		{"unknown format", "/check?format=docx", body, http.StatusNotFound, "", "NOT_FOUND"},
		{"not a snapshot", "/check", []byte("hello"), http.StatusBadRequest, "", "INVALID_SNAPSHOT"},
		{"broken json", "/check", []byte(`{"version":`), http.StatusBadRequest, "", "INVALID_SNAPSHOT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, s, http.MethodPost, tt.target, tt.body)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}
			if tt.errStr != "" {
				if resp.Error == nil || resp.Error.Code != tt.errStr {
					t.Errorf("error = %+v, want %s", resp.Error, tt.errStr)
				}
				return
			}
			var r formats.Report
			decode(t, resp.Data, &r)
			if r.LossClass != tt.class {
				t.Errorf("loss class = %s, want %s", r.LossClass, tt.class)
			}
		})
	}
}

func TestHandleCheckCompressed(t *testing.T) {
	s := testServer(t, Config{Profile: "srt"})

	path := filepath.Join(t.TempDir(), "a.json.xz")
	if err := snapshot.Save(path, wordsTranscription(t, "x")); err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	w, resp := do(t, s, http.MethodPost, "/check", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var r formats.Report
	decode(t, resp.Data, &r)
	if r.Format != "srt" || r.LossClass != formats.LossL0 {
		t.Errorf("report = %+v", r)
	}
}

func TestHandleCheckPointTier(t *testing.T) {
	s := testServer(t, Config{})

	// Points are not allowed in an srt tier.
	trs := ann.NewTranscription("p")
	tier, err := trs.CreateTier("Marks")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tier.CreateAnnotation(ann.NewLocation(ann.MustPoint(1, 0))); err != nil {
		t.Fatal(err)
	}
	body, err := snapshot.Marshal(trs)
	if err != nil {
		t.Fatal(err)
	}
	w, resp := do(t, s, http.MethodPost, "/check?format=srt", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var r formats.Report
	decode(t, resp.Data, &r)
	if r.LossClass != formats.LossL4 {
		t.Errorf("point tier in srt = %s, want L4", r.LossClass)
	}
}
