// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ImageGenerator is an optional interface that AI providers can implement
// to support image generation. Mistral is text-only.
type ImageGenerator interface {
	// GenerateImage creates an image from a text prompt. Returns the raw
	// image bytes and the MIME content type (e.g., "image/png").
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// GenerateImage calls the active provider's image generation if supported.
// Returns an error if the active provider does not implement ImageGenerator.
func (r *Registry) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	p, err := r.Active()
	if err != nil {
		return nil, "", err
	}

	ig, ok := p.(ImageGenerator)
	if !ok {
		return nil, "", fmt.Errorf("ai: provider %q does not support image generation", p.Name())
	}

	return ig.GenerateImage(ctx, prompt)
}

// SupportsImageGeneration returns true if the active provider can generate images.
func (r *Registry) SupportsImageGeneration() bool {
	p, err := r.Active()
	if err != nil {
		return false
	}
	_, ok := p.(ImageGenerator)
	return ok
}

// GenerateImage creates an image with DALL-E 3 via the OpenAI images API
// (POST /v1/images/generations, b64_json response).
func (p *openAIProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	body := openAIImageRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "b64_json",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("openai image marshal: %w", err)
	}

	url := p.config.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("openai image request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	// Image generation is slow; use a dedicated client with a long timeout.
	imgClient := &http.Client{Timeout: 120 * time.Second}
	resp, err := imgClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("openai image http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("openai image read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("openai image API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result openAIImageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, "", fmt.Errorf("openai image unmarshal: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, "", fmt.Errorf("openai image: no image data in response")
	}

	imgBytes, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("openai image decode base64: %w", err)
	}

	return imgBytes, "image/png", nil
}

// --- OpenAI images API types ---

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}
