// Package aisvc implements the generative backend on the Gemini REST API.
package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/ai"
)

const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"
	geminiModel    = "gemini-1.5-flash"
)

type (
	geminiPart struct {
		Text       string            `json:"text,omitempty"`
		InlineData *geminiInlineData `json:"inline_data,omitempty"`
	}
	geminiInlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}
	geminiContent struct {
		Parts []geminiPart `json:"parts"`
	}
	geminiGenerationConfig struct {
		Temperature      float64 `json:"temperature"`
		ResponseMimeType string  `json:"response_mime_type,omitempty"`
	}
	geminiRequest struct {
		Contents         []geminiContent        `json:"contents"`
		GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	}
	geminiResponse struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
)

type geminiGenerator struct {
	key    string
	model  string
	client *http.Client
}

var _ ai.Generator = (*geminiGenerator)(nil)

func NewGeminiGenerator(conf *core.Config) ai.Generator {
	return &geminiGenerator{
		key:    conf.GeminiAPIKey,
		model:  geminiModel,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (gen *geminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return gen.generate(ctx, geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{Temperature: 0.4},
	})
}

func (gen *geminiGenerator) DetectHotspots(ctx context.Context, imageBase64, mimeType string) ([]ai.Hotspot, error) {
	prompt := "Identify the distinct objects in this image a young child could point at. " +
		"Respond with a JSON array only, each element of the form " +
		`{"label": string, "box": {"x": number, "y": number, "width": number, "height": number}} ` +
		"where box coordinates are fractions of the image dimensions between 0 and 1."

	text, err := gen.generate(ctx, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{
			{Text: prompt},
			{InlineData: &geminiInlineData{MimeType: mimeType, Data: imageBase64}},
		}}},
		GenerationConfig: geminiGenerationConfig{Temperature: 0.1, ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	// the model occasionally wraps the array in markdown fences
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		text = text[start : end+1]
	}
	var hotspots []ai.Hotspot
	if err = json.Unmarshal([]byte(text), &hotspots); err != nil {
		return nil, errors.Wrap(err, "decoding hotspots")
	}
	return hotspots, nil
}

func (gen *geminiGenerator) generate(ctx context.Context, body geminiRequest) (string, error) {
	if gen.key == "" {
		return "", ai.ErrNoAPIKey
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	url := fmt.Sprintf(geminiEndpoint, gen.model, gen.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := gen.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling gemini")
	}
	defer res.Body.Close()

	resData, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}
	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("gemini: status %d: %s", res.StatusCode, resData)
	}

	var resp geminiResponse
	if err = json.Unmarshal(resData, &resp); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}
