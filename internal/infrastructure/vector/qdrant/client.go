package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

// Client talks to a Qdrant collection holding one point per assessment, keyed
// by the assessment's integer id. The collection uses Euclid distance, so the
// score Qdrant returns on search is a raw distance (lower is closer).
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Recreate drops and recreates the collection for a full index rebuild.
func (c *Client) Recreate(ctx context.Context, vectorSize int) error {
	deleteURL := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return fmt.Errorf("create delete collection request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant delete collection request: %w", err)
	}
	resp.Body.Close()
	// 404 just means the collection never existed.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant delete collection status: %s", resp.Status)
	}

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Euclid",
		},
	}
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", c.collection), reqBody, nil, "create collection")
}

// Upsert writes one point per assessment; ids and vectors align by position.
func (c *Client) Upsert(ctx context.Context, ids []int, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids/vectors mismatch: %d vs %d", len(ids), len(vectors))
	}

	type point struct {
		ID      int            `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}
	points := make([]point, 0, len(ids))
	for i, id := range ids {
		points = append(points, point{
			ID:     id,
			Vector: vectors[i],
			Payload: map[string]any{
				"assessment_id": id,
			},
		})
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	return c.doJSON(ctx, http.MethodPut, path, map[string]any{"points": points}, nil, "upsert")
}

// Search returns up to k nearest points as (assessment id, distance) pairs.
func (c *Client) Search(ctx context.Context, queryVector []float32, k int) ([]domain.VectorHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        k,
		"with_payload": false,
	}

	var searchResp struct {
		Result []struct {
			ID    int     `json:"id"`
			Score float64 `json:"score"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", c.collection)
	if err := c.doJSON(ctx, http.MethodPost, path, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.VectorHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.VectorHit{ID: r.ID, Distance: r.Score})
	}
	return out, nil
}

// Count returns the number of indexed points. Used as the startup fail-fast
// check: a missing or empty collection is a fatal configuration error.
func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", c.collection)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"exact": true}, &countResp, "count"); err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("qdrant %s status: %s: %s", operation, resp.Status, msg)
		}
		return fmt.Errorf("qdrant %s status: %s", operation, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
