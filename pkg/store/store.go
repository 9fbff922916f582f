package store

import (
	"time"

	"sermonbot/pkg/domain"
)

// Store defines persistence operations for transcripts, users, conversations,
// and sermon documents. Reads report absence with the bool result; errors are
// reserved for storage failures and invalid input.
type Store interface {
	// transcripts
	AddTranscript(rec domain.TranscriptRecord) (int64, error)
	GetTranscriptByVideoID(videoID string) (domain.TranscriptRecord, bool, error)
	GetTranscriptByTitle(title string) (domain.TranscriptRecord, bool, error)
	VideoIDByTitle(title string) (string, bool, error)
	UpdateTranscriptTitle(videoID, newTitle string) (bool, error)
	UpdateTranscriptByTitle(title, transcript string) (bool, error)
	UpdateTranscriptByVideoID(videoID, transcript string) (bool, error)
	DeleteTranscriptByVideoID(videoID string) (bool, error)
	DeleteTranscriptByPK(id int64) (bool, error)
	ListTranscripts() ([]domain.TranscriptRecord, error)
	ListTranscriptTitles() ([]string, error)
	TranscriptExistsByTitle(title string) (bool, error)

	// users
	SaveUser(u domain.User) error
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	UpdateUser(id string, fields map[string]any) (domain.User, bool, error)
	DeleteUser(id string) (bool, error)

	// conversations
	SaveConversation(c domain.Conversation) error
	GetConversation(id string) (domain.Conversation, bool, error)
	ListConversationsByUser(userID string) ([]domain.Conversation, error)
	UpdateConversation(id, name string, prompts []domain.Prompt, modified time.Time) (bool, error)
	DeleteConversation(userID, conversationID string) (bool, error)

	// sermon documents
	SaveSermon(s domain.SermonDocument) error
	GetSermonByID(id string) (domain.SermonDocument, bool, error)
	GetSermonByTitle(title string) (domain.SermonDocument, bool, error)
	GetSermonByMinister(minister string) (domain.SermonDocument, bool, error)
	UpdateSermon(id string, fields map[string]any) (bool, error)
	DeleteSermon(id string) (bool, error)
	ListSermons() ([]domain.SermonDocument, error)

	// vector collection naming
	ResolveCollection(videoID string) (string, error)
	LookupCollection(videoID string) (string, bool, error)
}

// TokenStore persists at most one access token per user.
type TokenStore interface {
	UpsertToken(t domain.AccessToken) error
	GetToken(userID string) (domain.AccessToken, bool, error)
	DeleteToken(userID string) (bool, error)
}
