package domain

import "time"

// DefaultConversationName is the placeholder a conversation starts with.
const DefaultConversationName = "New conversation"

// TokenTypeBearer is the only token type the backend issues.
const TokenTypeBearer = "bearer"

// TranscriptRecord is a cached YouTube sermon transcript.
type TranscriptRecord struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Preacher   string `json:"preacher"`
	VideoID    string `json:"videoId"`
	Transcript string `json:"transcript"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName,omitempty"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AccessToken is the signed, time-limited credential bound to one user.
type AccessToken struct {
	UserID      string    `json:"userId"`
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Prompt is one question/answer exchange. Prompts are append-only and never
// mutated once stored.
type Prompt struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Conversation is an ordered set of prompts belonging to one user.
type Conversation struct {
	ID           string    `json:"conversationId"`
	UserID       string    `json:"userId"`
	Name         string    `json:"conversationName"`
	Prompts      []Prompt  `json:"prompts"`
	DateModified time.Time `json:"dateModified"`
}

// SermonDocument is uploaded sermon metadata with its stored artifacts.
type SermonDocument struct {
	ID          string    `json:"sermonId"`
	Title       string    `json:"title"`
	CoverURL    string    `json:"coverUrl"`
	DocumentURL string    `json:"documentUrl"`
	Minister    string    `json:"minister"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Passage is a scored transcript chunk returned by the retrieval tool.
type Passage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
