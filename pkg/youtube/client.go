// Package youtube fetches video caption tracks from the timedtext endpoint.
package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.youtube.com"

// Segment is one caption entry, in track order.
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// TranscriptAPI fetches the ordered caption segments for a video.
type TranscriptAPI interface {
	FetchTranscript(ctx context.Context, videoID string) ([]Segment, error)
}

// Client retrieves caption tracks over HTTP.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewClient builds a transcript client for the given caption language
// (defaults to English).
func NewClient(language string) *Client {
	if strings.TrimSpace(language) == "" {
		language = "en"
	}
	return &Client{
		baseURL:    defaultBaseURL,
		language:   language,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type timedText struct {
	Texts []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript returns the caption segments for a video in track order.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) ([]Segment, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, fmt.Errorf("video ID required")
	}
	endpoint := fmt.Sprintf("%s/api/timedtext?v=%s&lang=%s",
		c.baseURL, url.QueryEscape(videoID), url.QueryEscape(c.language))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("timedtext request failed: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no captions available for video %q", videoID)
	}
	var track timedText
	if err := xml.Unmarshal(body, &track); err != nil {
		return nil, fmt.Errorf("parse captions: %w", err)
	}
	if len(track.Texts) == 0 {
		return nil, fmt.Errorf("no captions available for video %q", videoID)
	}
	segments := make([]Segment, 0, len(track.Texts))
	for _, t := range track.Texts {
		segments = append(segments, Segment{
			Text:     html.UnescapeString(t.Body),
			Start:    t.Start,
			Duration: t.Duration,
		})
	}
	return segments, nil
}

// JoinSegments concatenates segment text in API order into one transcript
// string.
func JoinSegments(segments []Segment) string {
	var sb strings.Builder
	for _, segment := range segments {
		sb.WriteString(segment.Text)
	}
	return sb.String()
}
