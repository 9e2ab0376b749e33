// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pexels is a client for the Pexels stock-photo search API.
// Multiple API keys are rotated through an injectable round-robin KeyRing
// so rate-limit pressure spreads across keys and tests can control key
// order deterministically.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// KeyRing hands out API keys round-robin. Safe for concurrent use.
type KeyRing struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyRing creates a key ring over the given keys.
func NewKeyRing(keys []string) *KeyRing {
	return &KeyRing{keys: keys}
}

// Next returns the next key in rotation, or "" if the ring is empty.
func (k *KeyRing) Next() string {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.keys) == 0 {
		return ""
	}
	key := k.keys[k.next%len(k.keys)]
	k.next++
	return key
}

// Len returns the number of keys in the ring.
func (k *KeyRing) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.keys)
}

// Photo is one search result from the Pexels API.
type Photo struct {
	ID           int    `json:"id"`
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	Alt          string `json:"alt"`
	Src          struct {
		Large    string `json:"large"`
		Large2x  string `json:"large2x"`
		Medium   string `json:"medium"`
		Original string `json:"original"`
	} `json:"src"`
}

// searchResponse is the wire format of GET /v1/search.
type searchResponse struct {
	Photos []Photo `json:"photos"`
}

// Client searches the Pexels photo library.
type Client struct {
	baseURL string
	keys    *KeyRing
	http    *http.Client
}

// New creates a Pexels client. baseURL is overridable for tests; pass ""
// for the production endpoint.
func New(baseURL string, keys *KeyRing) *Client {
	if baseURL == "" {
		baseURL = "https://api.pexels.com/v1"
	}
	return &Client{
		baseURL: baseURL,
		keys:    keys,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Search queries Pexels for photos matching the query. On a 401/403/429
// response the key is assumed exhausted or invalid: the ring advances and
// the request is retried once with the next key.
func (c *Client) Search(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if c.keys.Len() == 0 {
		return nil, fmt.Errorf("pexels: no API keys configured")
	}
	if perPage <= 0 {
		perPage = 5
	}

	photos, status, err := c.doSearch(ctx, query, perPage, c.keys.Next())
	if err == nil {
		return photos, nil
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusTooManyRequests {
		// Rotate to the next key and retry once.
		photos, _, err = c.doSearch(ctx, query, perPage, c.keys.Next())
	}
	return photos, err
}

// doSearch performs a single search request with the given key.
func (c *Client) doSearch(ctx context.Context, query string, perPage int, key string) ([]Photo, int, error) {
	u := c.baseURL + "/search?query=" + url.QueryEscape(query) + "&per_page=" + strconv.Itoa(perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("pexels request: %w", err)
	}
	req.Header.Set("Authorization", key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("pexels http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("pexels API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("pexels decode: %w", err)
	}
	return result.Photos, resp.StatusCode, nil
}
