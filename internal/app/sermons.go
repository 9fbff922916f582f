package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"sermonbot/internal/util"
	"sermonbot/pkg/domain"
)

const presignExpiry = 15 * time.Minute

// CreateSermon registers sermon metadata. Titles are unique.
func (a *App) CreateSermon(title, minister, description string) (domain.SermonDocument, error) {
	if strings.TrimSpace(title) == "" {
		return domain.SermonDocument{}, fmt.Errorf("%w: title required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(minister) == "" {
		return domain.SermonDocument{}, fmt.Errorf("%w: minister required", domain.ErrInvalidInput)
	}
	if _, ok, err := a.store.GetSermonByTitle(title); err != nil {
		return domain.SermonDocument{}, err
	} else if ok {
		return domain.SermonDocument{}, fmt.Errorf("sermon %q: %w", title, domain.ErrAlreadyExists)
	}
	now := time.Now().UTC()
	sermon := domain.SermonDocument{
		ID:          util.NewID(),
		Title:       title,
		Minister:    minister,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.SaveSermon(sermon); err != nil {
		return domain.SermonDocument{}, err
	}
	return sermon, nil
}

// GetSermon looks a sermon up by ID.
func (a *App) GetSermon(id string) (domain.SermonDocument, error) {
	sermon, ok, err := a.store.GetSermonByID(id)
	if err != nil {
		return domain.SermonDocument{}, err
	}
	if !ok {
		return domain.SermonDocument{}, fmt.Errorf("sermon %q: %w", id, domain.ErrNotFound)
	}
	return sermon, nil
}

// FindSermon looks a sermon up by title or, failing that, by minister.
func (a *App) FindSermon(title, minister string) (domain.SermonDocument, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(minister) == "" {
		return domain.SermonDocument{}, fmt.Errorf("%w: title or minister required", domain.ErrInvalidInput)
	}
	if title != "" {
		sermon, ok, err := a.store.GetSermonByTitle(title)
		if err != nil {
			return domain.SermonDocument{}, err
		}
		if ok {
			return sermon, nil
		}
	}
	if minister != "" {
		sermon, ok, err := a.store.GetSermonByMinister(minister)
		if err != nil {
			return domain.SermonDocument{}, err
		}
		if ok {
			return sermon, nil
		}
	}
	return domain.SermonDocument{}, fmt.Errorf("sermon: %w", domain.ErrNotFound)
}

// ListSermons returns all sermon records.
func (a *App) ListSermons() ([]domain.SermonDocument, error) {
	return a.store.ListSermons()
}

// UpdateSermon applies a partial metadata update.
func (a *App) UpdateSermon(id string, fields map[string]any) error {
	updated, err := a.store.UpdateSermon(id, fields)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("sermon %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteSermon removes a sermon, its stored artifacts, and its vector
// collection. Artifact cleanup failures are logged, not fatal: the metadata
// row is already gone.
func (a *App) DeleteSermon(ctx context.Context, id string) error {
	sermon, ok, err := a.store.GetSermonByID(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("sermon %q: %w", id, domain.ErrNotFound)
	}
	if _, err := a.store.DeleteSermon(id); err != nil {
		return err
	}
	if a.objects != nil {
		for _, key := range []string{sermon.DocumentURL, sermon.CoverURL} {
			if key == "" {
				continue
			}
			if err := a.objects.Delete(ctx, key); err != nil {
				slog.Error("sermon artifact delete failed", "sermon_id", id, "key", key, "error", err)
			}
		}
	}
	collection, ok, err := a.store.LookupCollection(id)
	if err != nil {
		slog.Error("sermon collection lookup failed", "sermon_id", id, "error", err)
	} else if ok && a.index != nil {
		if err := a.index.Drop(ctx, collection); err != nil {
			slog.Error("sermon collection drop failed", "sermon_id", id, "collection", collection, "error", err)
		}
	}
	return nil
}

// UploadSermonDocument stores the sermon text artifact and indexes its
// contents for retrieval.
func (a *App) UploadSermonDocument(ctx context.Context, id, filename string, r io.Reader, size int64, contentType string) (domain.SermonDocument, error) {
	if a.objects == nil {
		return domain.SermonDocument{}, fmt.Errorf("%w: object storage not configured", domain.ErrUpstream)
	}
	sermon, ok, err := a.store.GetSermonByID(id)
	if err != nil {
		return domain.SermonDocument{}, err
	}
	if !ok {
		return domain.SermonDocument{}, fmt.Errorf("sermon %q: %w", id, domain.ErrNotFound)
	}
	key := sermonObjectKey(id, filename)
	if err := a.objects.Put(ctx, key, r, size, contentType); err != nil {
		return domain.SermonDocument{}, fmt.Errorf("store document: %w", err)
	}
	if _, err := a.store.UpdateSermon(id, map[string]any{"document_url": key}); err != nil {
		return domain.SermonDocument{}, err
	}
	sermon.DocumentURL = key
	if err := a.IngestSermonDocument(ctx, id); err != nil {
		return domain.SermonDocument{}, err
	}
	return sermon, nil
}

// UploadSermonCover stores the cover image artifact.
func (a *App) UploadSermonCover(ctx context.Context, id, filename string, r io.Reader, size int64, contentType string) (domain.SermonDocument, error) {
	if a.objects == nil {
		return domain.SermonDocument{}, fmt.Errorf("%w: object storage not configured", domain.ErrUpstream)
	}
	sermon, ok, err := a.store.GetSermonByID(id)
	if err != nil {
		return domain.SermonDocument{}, err
	}
	if !ok {
		return domain.SermonDocument{}, fmt.Errorf("sermon %q: %w", id, domain.ErrNotFound)
	}
	key := sermonObjectKey(id, filename)
	if err := a.objects.Put(ctx, key, r, size, contentType); err != nil {
		return domain.SermonDocument{}, fmt.Errorf("store cover: %w", err)
	}
	if _, err := a.store.UpdateSermon(id, map[string]any{"cover_url": key}); err != nil {
		return domain.SermonDocument{}, err
	}
	sermon.CoverURL = key
	return sermon, nil
}

// SermonDocumentURL returns a pre-signed download URL for the sermon's
// document.
func (a *App) SermonDocumentURL(ctx context.Context, id string) (string, error) {
	if a.objects == nil {
		return "", fmt.Errorf("%w: object storage not configured", domain.ErrUpstream)
	}
	sermon, err := a.GetSermon(id)
	if err != nil {
		return "", err
	}
	if sermon.DocumentURL == "" {
		return "", fmt.Errorf("sermon %q has no document: %w", id, domain.ErrNotFound)
	}
	return a.objects.PresignGet(ctx, sermon.DocumentURL, presignExpiry)
}

// IngestSermonDocument parses the stored sermon document and rebuilds its
// vector collection.
func (a *App) IngestSermonDocument(ctx context.Context, id string) error {
	if a.objects == nil {
		return fmt.Errorf("%w: object storage not configured", domain.ErrUpstream)
	}
	if a.embedder == nil || a.index == nil {
		return fmt.Errorf("%w: retrieval pipeline not configured", domain.ErrUpstream)
	}
	sermon, ok, err := a.store.GetSermonByID(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("sermon %q: %w", id, domain.ErrNotFound)
	}
	if sermon.DocumentURL == "" {
		return fmt.Errorf("sermon %q has no document: %w", id, domain.ErrNotFound)
	}
	obj, err := a.objects.Get(ctx, sermon.DocumentURL)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	defer obj.Close()
	text, err := parseDocument(sermon.DocumentURL, obj)
	if err != nil {
		return err
	}
	collection, err := a.store.ResolveCollection(id)
	if err != nil {
		return err
	}
	chunks := chunkText(text, a.chunkSize, a.chunkOverlap)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: document has no extractable text", domain.ErrInvalidInput)
	}
	vectors, err := a.embedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}
	if err := a.index.Replace(ctx, collection, chunks, vectors); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	return nil
}

func sermonObjectKey(id, filename string) string {
	return "sermons/" + id + "/" + filename
}
