package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchDecodesHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/assessments/points/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Limit int `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Limit != 4 {
			t.Fatalf("expected limit 4, got %d", req.Limit)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"id": 12, "score": 0.25},
				{"id": 7, "score": 1.5},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "assessments")
	hits, err := client.Search(context.Background(), []float32{0.1, 0.2}, 4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != 12 || hits[0].Distance != 0.25 {
		t.Fatalf("unexpected first hit: %+v", hits[0])
	}
}

func TestSearchSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "assessments")
	if _, err := client.Search(context.Background(), []float32{0.1}, 2); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCountReadsExactCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/assessments/points/count" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"count": 399},
		})
	}))
	defer server.Close()

	client := New(server.URL, "assessments")
	count, err := client.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 399 {
		t.Fatalf("expected 399, got %d", count)
	}
}

func TestRecreateDeletesThenCreates(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodPut {
			var req struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode create body: %v", err)
			}
			if req.Vectors.Size != 384 || req.Vectors.Distance != "Euclid" {
				t.Fatalf("unexpected collection config: %+v", req.Vectors)
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "assessments")
	if err := client.Recreate(context.Background(), 384); err != nil {
		t.Fatalf("Recreate() error = %v", err)
	}
	if len(methods) != 2 || methods[0] != http.MethodDelete || methods[1] != http.MethodPut {
		t.Fatalf("unexpected request sequence: %v", methods)
	}
}

func TestUpsertRejectsMisalignedInput(t *testing.T) {
	client := New("http://localhost:6333", "assessments")
	err := client.Upsert(context.Background(), []int{1, 2}, [][]float32{{0.1}})
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}
