package store

import (
	"fmt"
	"sync"
	"time"

	"sermonbot/pkg/domain"
)

// MemoryStore keeps everything in-process. It backs tests and local runs
// without Postgres.
type MemoryStore struct {
	mu            sync.RWMutex
	nextPK        int64
	transcripts   map[string]domain.TranscriptRecord // key: video ID
	transcriptSeq []string
	users         map[string]domain.User // key: user ID
	email         map[string]string      // email -> user ID
	tokens        map[string]domain.AccessToken
	convs         map[string]domain.Conversation
	convSeq       []string
	sermons       map[string]domain.SermonDocument
	sermonSeq     []string
	collections   map[string]string // name -> video ID
	byVideo       map[string]string // video ID -> name
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transcripts: make(map[string]domain.TranscriptRecord),
		users:       make(map[string]domain.User),
		email:       make(map[string]string),
		tokens:      make(map[string]domain.AccessToken),
		convs:       make(map[string]domain.Conversation),
		sermons:     make(map[string]domain.SermonDocument),
		collections: make(map[string]string),
		byVideo:     make(map[string]string),
	}
}

func (m *MemoryStore) AddTranscript(rec domain.TranscriptRecord) (int64, error) {
	if err := validateTranscript(rec); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.transcripts[rec.VideoID]; exists {
		return 0, fmt.Errorf("%w: video ID %q", domain.ErrAlreadyExists, rec.VideoID)
	}
	m.nextPK++
	rec.ID = m.nextPK
	m.transcripts[rec.VideoID] = rec
	m.transcriptSeq = append(m.transcriptSeq, rec.VideoID)
	return rec.ID, nil
}

func (m *MemoryStore) GetTranscriptByVideoID(videoID string) (domain.TranscriptRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.transcripts[videoID]
	return rec, ok, nil
}

func (m *MemoryStore) GetTranscriptByTitle(title string) (domain.TranscriptRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, videoID := range m.transcriptSeq {
		if rec, ok := m.transcripts[videoID]; ok && rec.Title == title {
			return rec, true, nil
		}
	}
	return domain.TranscriptRecord{}, false, nil
}

func (m *MemoryStore) VideoIDByTitle(title string) (string, bool, error) {
	rec, ok, err := m.GetTranscriptByTitle(title)
	if err != nil || !ok {
		return "", false, err
	}
	return rec.VideoID, true, nil
}

func (m *MemoryStore) UpdateTranscriptTitle(videoID, newTitle string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.transcripts[videoID]
	if !ok {
		return false, nil
	}
	rec.Title = newTitle
	m.transcripts[videoID] = rec
	return true, nil
}

func (m *MemoryStore) UpdateTranscriptByTitle(title, transcript string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for videoID, rec := range m.transcripts {
		if rec.Title == title {
			rec.Transcript = transcript
			m.transcripts[videoID] = rec
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) UpdateTranscriptByVideoID(videoID, transcript string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.transcripts[videoID]
	if !ok {
		return false, nil
	}
	rec.Transcript = transcript
	m.transcripts[videoID] = rec
	return true, nil
}

func (m *MemoryStore) DeleteTranscriptByVideoID(videoID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transcripts[videoID]; !ok {
		return false, nil
	}
	delete(m.transcripts, videoID)
	m.transcriptSeq = removeString(m.transcriptSeq, videoID)
	return true, nil
}

func (m *MemoryStore) DeleteTranscriptByPK(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for videoID, rec := range m.transcripts {
		if rec.ID == id {
			delete(m.transcripts, videoID)
			m.transcriptSeq = removeString(m.transcriptSeq, videoID)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ListTranscripts() ([]domain.TranscriptRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.TranscriptRecord, 0, len(m.transcriptSeq))
	for _, videoID := range m.transcriptSeq {
		if rec, ok := m.transcripts[videoID]; ok {
			res = append(res, rec)
		}
	}
	return res, nil
}

func (m *MemoryStore) ListTranscriptTitles() ([]string, error) {
	recs, err := m.ListTranscripts()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(recs))
	for _, rec := range recs {
		titles = append(titles, rec.Title)
	}
	return titles, nil
}

func (m *MemoryStore) TranscriptExistsByTitle(title string) (bool, error) {
	_, ok, err := m.GetTranscriptByTitle(title)
	return ok, err
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) UpdateUser(id string, fields map[string]any) (domain.User, bool, error) {
	if _, err := filterColumns(fields, userUpdateColumns); err != nil {
		return domain.User{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false, nil
	}
	for key, value := range fields {
		text, _ := value.(string)
		switch key {
		case "email":
			delete(m.email, u.Email)
			u.Email = text
			m.email[text] = id
		case "first_name":
			u.FirstName = text
		case "last_name":
			u.LastName = text
		case "picture":
			u.Picture = text
		}
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return u, true, nil
}

func (m *MemoryStore) DeleteUser(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	delete(m.users, id)
	delete(m.email, u.Email)
	return true, nil
}

func (m *MemoryStore) UpsertToken(t domain.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.UserID] = t
	return nil
}

func (m *MemoryStore) GetToken(userID string) (domain.AccessToken, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[userID]
	return t, ok, nil
}

func (m *MemoryStore) DeleteToken(userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[userID]; !ok {
		return false, nil
	}
	delete(m.tokens, userID)
	return true, nil
}

func (m *MemoryStore) SaveConversation(c domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.convs[c.ID]; !exists {
		m.convSeq = append(m.convSeq, c.ID)
	}
	m.convs[c.ID] = cloneConversation(c)
	return nil
}

func (m *MemoryStore) GetConversation(id string) (domain.Conversation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.convs[id]
	if !ok {
		return domain.Conversation{}, false, nil
	}
	return cloneConversation(c), true, nil
}

func (m *MemoryStore) ListConversationsByUser(userID string) ([]domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Conversation, 0, len(m.convSeq))
	for _, id := range m.convSeq {
		if c, ok := m.convs[id]; ok && c.UserID == userID {
			res = append(res, cloneConversation(c))
		}
	}
	return res, nil
}

func (m *MemoryStore) UpdateConversation(id, name string, prompts []domain.Prompt, modified time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[id]
	if !ok {
		return false, nil
	}
	c.Name = name
	c.Prompts = append([]domain.Prompt(nil), prompts...)
	c.DateModified = modified.UTC()
	m.convs[id] = c
	return true, nil
}

func (m *MemoryStore) DeleteConversation(userID, conversationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convs[conversationID]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(m.convs, conversationID)
	m.convSeq = removeString(m.convSeq, conversationID)
	return true, nil
}

func (m *MemoryStore) SaveSermon(doc domain.SermonDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sermons[doc.ID]; !exists {
		m.sermonSeq = append(m.sermonSeq, doc.ID)
	}
	m.sermons[doc.ID] = doc
	return nil
}

func (m *MemoryStore) GetSermonByID(id string) (domain.SermonDocument, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.sermons[id]
	return doc, ok, nil
}

func (m *MemoryStore) GetSermonByTitle(title string) (domain.SermonDocument, bool, error) {
	return m.findSermon(func(doc domain.SermonDocument) bool { return doc.Title == title })
}

func (m *MemoryStore) GetSermonByMinister(minister string) (domain.SermonDocument, bool, error) {
	return m.findSermon(func(doc domain.SermonDocument) bool { return doc.Minister == minister })
}

func (m *MemoryStore) findSermon(match func(domain.SermonDocument) bool) (domain.SermonDocument, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.sermonSeq {
		if doc, ok := m.sermons[id]; ok && match(doc) {
			return doc, true, nil
		}
	}
	return domain.SermonDocument{}, false, nil
}

func (m *MemoryStore) UpdateSermon(id string, fields map[string]any) (bool, error) {
	if _, err := filterColumns(fields, sermonUpdateColumns); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.sermons[id]
	if !ok {
		return false, nil
	}
	for key, value := range fields {
		text, _ := value.(string)
		switch key {
		case "title":
			doc.Title = text
		case "cover_url":
			doc.CoverURL = text
		case "document_url":
			doc.DocumentURL = text
		case "minister":
			doc.Minister = text
		case "description":
			doc.Description = text
		}
	}
	doc.UpdatedAt = time.Now().UTC()
	m.sermons[id] = doc
	return true, nil
}

func (m *MemoryStore) DeleteSermon(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sermons[id]; !ok {
		return false, nil
	}
	delete(m.sermons, id)
	m.sermonSeq = removeString(m.sermonSeq, id)
	return true, nil
}

func (m *MemoryStore) ListSermons() ([]domain.SermonDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.SermonDocument, 0, len(m.sermonSeq))
	for _, id := range m.sermonSeq {
		if doc, ok := m.sermons[id]; ok {
			res = append(res, doc)
		}
	}
	return res, nil
}

func (m *MemoryStore) ResolveCollection(videoID string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("%w: video ID required", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if name, ok := m.byVideo[videoID]; ok {
		return name, nil
	}
	for _, name := range collectionCandidates(videoID) {
		held, taken := m.collections[name]
		if !taken {
			m.collections[name] = videoID
			m.byVideo[videoID] = name
			return name, nil
		}
		if held == videoID {
			return name, nil
		}
	}
	return "", fmt.Errorf("no collision-free collection name for video %q", videoID)
}

func (m *MemoryStore) LookupCollection(videoID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.byVideo[videoID]
	return name, ok, nil
}

func cloneConversation(c domain.Conversation) domain.Conversation {
	c.Prompts = append([]domain.Prompt(nil), c.Prompts...)
	return c
}

func removeString(items []string, target string) []string {
	filtered := items[:0]
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
