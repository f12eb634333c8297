package hud

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gwatts/rootcerts"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-3-flash-preview"
)

const prompt = `Analyze this mobile game HUD screenshot. Identify exactly where the key controls are located.
Categories:
- FIRE: Shoot button
- WASD: Movement joystick
- AIM: Scope/Aim button
- JUMP: Jump button
- RELOAD: Reload button

Return coordinates (x, y) as percentages (0-100) based on the image dimensions.
Output ONLY a valid JSON array of objects.`

// GeminiConfig configures a GeminiDetector.
type GeminiConfig struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
	// MIMEType of the images sent; defaults to image/png.
	MIMEType string
}

// GeminiDetector calls the generateContent REST method with a JSON response schema.
type GeminiDetector struct {
	cfg    GeminiConfig
	client *http.Client
}

func NewGeminiDetector(cfg GeminiConfig) *GeminiDetector {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MIMEType == "" {
		cfg.MIMEType = "image/png"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	// Android hosts may ship without a CA bundle the Go runtime can find.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		RootCAs:    rootcerts.ServerCertPool(),
		MinVersion: tls.VersionTLS12,
	}
	return &GeminiDetector{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout, Transport: transport}}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

var responseSchema = map[string]any{
	"type": "ARRAY",
	"items": map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"type":  map[string]any{"type": "STRING", "description": "One of: FIRE, WASD, AIM, JUMP, RELOAD"},
			"x":     map[string]any{"type": "NUMBER", "description": "X coordinate percentage (0-100)"},
			"y":     map[string]any{"type": "NUMBER", "description": "Y coordinate percentage (0-100)"},
			"label": map[string]any{"type": "STRING"},
		},
		"required":         []string{"type", "x", "y"},
		"propertyOrdering": []string{"type", "x", "y", "label"},
	},
}

// Detect sends image and parses the reply. An empty reply yields ErrNoSuggestions.
func (g *GeminiDetector) Detect(ctx context.Context, image []byte) ([]Suggestion, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{MIMEType: g.cfg.MIMEType, Data: base64.StdEncoding.EncodeToString(image)}},
		}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.cfg.Endpoint, url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generateContent: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoSuggestions
	}
	return ParseSuggestions(out.Candidates[0].Content.Parts[0].Text)
}
