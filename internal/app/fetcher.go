package app

import (
	"context"
	"log/slog"
	"strings"

	"sermonbot/pkg/domain"
	"sermonbot/pkg/youtube"
)

// GetTranscript returns the transcript for a sermon, serving from the cache
// when the video was fetched before. On a cache miss the captions are pulled
// from YouTube, stored, and returned. A video with no retrievable captions
// reports not-found rather than an error; the cause is logged.
func (a *App) GetTranscript(ctx context.Context, title, preacher, videoID string) (string, bool, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", false, nil
	}
	cached, ok, err := a.store.GetTranscriptByVideoID(videoID)
	if err != nil {
		return "", false, err
	}
	if ok {
		return cached.Transcript, true, nil
	}

	segments, err := a.transcript.FetchTranscript(ctx, videoID)
	if err != nil {
		slog.Warn("transcript fetch failed", "video_id", videoID, "error", err)
		return "", false, nil
	}
	transcript := youtube.JoinSegments(segments)
	if strings.TrimSpace(transcript) == "" {
		slog.Warn("transcript fetch returned empty captions", "video_id", videoID)
		return "", false, nil
	}

	_, err = a.store.AddTranscript(domain.TranscriptRecord{
		Title:      title,
		Preacher:   preacher,
		VideoID:    videoID,
		Transcript: transcript,
	})
	if err != nil {
		// The transcript is still usable this request even if caching failed.
		slog.Error("transcript cache write failed", "video_id", videoID, "error", err)
	}
	return transcript, true, nil
}
