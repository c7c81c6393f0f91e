package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// extractionInstruction is sent with every image. The model may answer with
// plain text or with a small JSON object carrying its own confidence.
const extractionInstruction = `Extract all text from this invoice or receipt image. ` +
	`If possible respond with JSON of the form {"text": "<full text>", "confidence": <0-100>}, ` +
	`otherwise respond with the raw text only.`

// defaultVisionConfidence applies when the model returns plain text without
// a self-reported score.
const defaultVisionConfidence = 85.0

// VisionClient calls a remote multimodal model over HTTPS with the image
// inlined as base64. The request carries a hard client timeout so an
// unresponsive service becomes an ordinary acquisition error instead of a
// stalled pipeline.
type VisionClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewVisionClient(apiURL, apiKey string, timeout time.Duration) *VisionClient {
	return &VisionClient{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether the client has enough configuration to be called.
func (v *VisionClient) Enabled() bool {
	return v.apiURL != "" && v.apiKey != ""
}

type visionRequest struct {
	Contents []visionContent `json:"contents"`
}

type visionContent struct {
	Parts []visionPart `json:"parts"`
}

type visionPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *visionInlineData `json:"inline_data,omitempty"`
}

type visionInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type visionResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ExtractText sends the document image to the vision model and returns the
// extracted text with a 0-100 confidence.
func (v *VisionClient) ExtractText(ctx context.Context, data []byte, mimeType string) (string, float64, error) {
	payload := visionRequest{
		Contents: []visionContent{{
			Parts: []visionPart{
				{Text: extractionInstruction},
				{InlineData: &visionInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to call vision API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("vision API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode vision response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", 0, fmt.Errorf("vision API returned no candidates")
	}

	raw := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if raw == "" {
		return "", 0, fmt.Errorf("vision API returned empty text")
	}

	text, confidence := parseModelAnswer(raw)
	log.Printf("Vision API extracted %d characters (confidence %.0f)", len(text), confidence)
	return text, confidence, nil
}

// parseModelAnswer accepts either the structured JSON answer or raw text.
func parseModelAnswer(raw string) (string, float64) {
	var structured struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}

	candidate := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "```json"), "```"))
	if err := json.Unmarshal([]byte(candidate), &structured); err == nil && structured.Text != "" {
		conf := structured.Confidence
		if conf <= 0 || conf > 100 {
			conf = defaultVisionConfidence
		}
		return structured.Text, conf
	}

	return raw, defaultVisionConfidence
}
