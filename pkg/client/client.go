package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/natanel567/newsrag/rag/types"
)

// Client is a client for the news retrieval API
type Client struct {
	BaseURL string
}

// NewClient creates a new retrieval API client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
	}
}

// Search retrieves ranked article chunks for a query. A zero topK or
// similarityThreshold leaves the server-side default in place.
func (c *Client) Search(query string, topK int, similarityThreshold float32) ([]types.Chunk, error) {
	url := fmt.Sprintf("%s/api/search", c.BaseURL)

	type request struct {
		Query               string  `json:"query"`
		TopK                int     `json:"top_k,omitempty"`
		SimilarityThreshold float32 `json:"similarity_threshold,omitempty"`
	}

	payload, err := json.Marshal(request{Query: query, TopK: topK, SimilarityThreshold: similarityThreshold})
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, errors.New("search service temporarily unavailable")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to search articles")
	}

	var chunks []types.Chunk
	err = json.NewDecoder(resp.Body).Decode(&chunks)
	if err != nil {
		return nil, err
	}

	return chunks, nil
}

// Health reports the service status and indexed document count.
func (c *Client) Health() (int, error) {
	url := fmt.Sprintf("%s/api/health", c.BaseURL)

	resp, err := http.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.New("service is not healthy")
	}

	var status struct {
		Status    string `json:"status"`
		Documents int    `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return 0, err
	}

	return status.Documents, nil
}
