// Package vision sends damage photos to the image analysis service.
package vision

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"claim-intake/internal/common/errors"
	commonhttp "claim-intake/internal/common/http"
	"claim-intake/internal/common/logger"
)

const analysisPrompt = "Analyze this vehicle incident photo for an insurance claim. " +
	"1. Extract the License Plate number if visible. " +
	"2. Rate the damage severity as Low, Medium, or High. " +
	"3. Provide a concise technical description of the visible damage."

// Severity levels, lowest first.
const (
	SeverityUnknown = "Unknown"
	SeverityLow     = "Low"
	SeverityMedium  = "Medium"
	SeverityHigh    = "High"
)

var severityRank = map[string]int{
	SeverityUnknown: 0,
	SeverityLow:     1,
	SeverityMedium:  2,
	SeverityHigh:    3,
}

// AtLeast reports whether severity meets threshold. Unknown never does.
func AtLeast(severity, threshold string) bool {
	s := severityRank[NormalizeSeverity(severity)]
	return s > 0 && s >= severityRank[NormalizeSeverity(threshold)]
}

// NormalizeSeverity canonicalizes case; anything unrecognized is Unknown.
func NormalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	}
	return SeverityUnknown
}

var severityInText = regexp.MustCompile(`(?i)severity[^A-Za-z]{0,20}(low|medium|high)`)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Report struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

type Client struct {
	config *Config
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		config: config,
		http:   commonhttp.NewClient(config.Timeout, config.APIKey),
		logger: log,
	}
}

type analyzeRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Analyze reads the photo at path and returns the damage report. When the
// service omits severity it is recovered from the report text.
func (c *Client) Analyze(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewPhotoNotFoundError(path, err)
	}

	req := analyzeRequest{
		Prompt:      analysisPrompt,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    http.DetectContentType(data),
	}

	var report Report
	url := strings.TrimRight(c.config.BaseURL, "/") + "/api/ai/vision"
	if err := c.http.PostJSON(ctx, url, req, &report); err != nil {
		return nil, errors.NewPhotoAnalysisFailedError(err)
	}

	report.Text = strings.TrimSpace(report.Text)
	if report.Text == "" {
		return nil, errors.NewPhotoAnalysisFailedError(nil)
	}

	report.Severity = NormalizeSeverity(report.Severity)
	if report.Severity == SeverityUnknown {
		if m := severityInText.FindStringSubmatch(report.Text); m != nil {
			report.Severity = NormalizeSeverity(m[1])
		}
	}

	c.logger.Info("Damage photo analyzed", map[string]interface{}{
		"path":     path,
		"severity": report.Severity,
	})
	return &report, nil
}
