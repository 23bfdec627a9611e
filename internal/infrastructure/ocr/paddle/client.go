// Package paddle recognizes handwritten text through a PaddleOCR-compatible
// HTTP server. Regions below the confidence floor are discarded before the
// page text is assembled.
package paddle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/legalarch/docai/internal/core/domain"
)

const defaultMinConfidence = 0.2

type Client struct {
	baseURL       string
	minConfidence float64
	httpClient    *http.Client
}

func New(baseURL string, minConfidence float64) *Client {
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		minConfidence: minConfidence,
		httpClient:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Name() string { return "paddleocr" }

type ocrRequest struct {
	Image string `json:"image"`
}

type ocrRegion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type ocrResponse struct {
	Regions []ocrRegion `json:"regions"`
}

func (c *Client) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "paddle encode page", err)
	}

	payload, err := json.Marshal(ocrRequest{Image: base64.StdEncoding.EncodeToString(buf.Bytes())})
	if err != nil {
		return "", fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.ErrUnavailable, "paddle recognize", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", domain.WrapError(domain.ErrUnavailable, "paddle recognize",
			fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(raw))))
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}

	lines := make([]string, 0, len(out.Regions))
	for _, region := range out.Regions {
		if region.Confidence < c.minConfidence {
			continue
		}
		if text := strings.TrimSpace(region.Text); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}
