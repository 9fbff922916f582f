package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchTranscript(t *testing.T) {
	var gotVideo, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/timedtext" {
			http.NotFound(w, r)
			return
		}
		gotVideo = r.URL.Query().Get("v")
		gotLang = r.URL.Query().Get("lang")
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<transcript>` +
			`<text start="0.5" dur="2.1">in the beginning </text>` +
			`<text start="2.6" dur="1.4">was the word &amp;c</text>` +
			`</transcript>`))
	}))
	defer srv.Close()

	client := NewClient("en").WithBaseURL(srv.URL)
	segments, err := client.FetchTranscript(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if gotVideo != "abc123" || gotLang != "en" {
		t.Fatalf("request carried v=%q lang=%q", gotVideo, gotLang)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Start != 0.5 || segments[0].Duration != 2.1 {
		t.Fatalf("first segment timing: %+v", segments[0])
	}
	if segments[1].Text != "was the word &c" {
		t.Fatalf("entities not unescaped: %q", segments[1].Text)
	}
	if got := JoinSegments(segments); got != "in the beginning was the word &c" {
		t.Fatalf("JoinSegments = %q", got)
	}
}

func TestFetchTranscriptEmptyTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("").WithBaseURL(srv.URL)
	if _, err := client.FetchTranscript(context.Background(), "abc123"); err == nil {
		t.Fatal("empty caption body accepted")
	}
}

func TestFetchTranscriptHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("en").WithBaseURL(srv.URL)
	if _, err := client.FetchTranscript(context.Background(), "abc123"); err == nil {
		t.Fatal("HTTP error accepted")
	}
}

func TestFetchTranscriptRequiresVideoID(t *testing.T) {
	client := NewClient("en")
	if _, err := client.FetchTranscript(context.Background(), " "); err == nil {
		t.Fatal("blank video ID accepted")
	}
}
