package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"sermonbot/pkg/domain"
)

// collectionPrefixLen is the number of leading video-ID characters a vector
// collection name starts from. Collisions extend the prefix.
const collectionPrefixLen = 10

// GormStore implements Store and TokenStore using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&TranscriptModel{},
		&UserModel{},
		&AccessTokenModel{},
		&ConversationModel{},
		&SermonModel{},
		&CollectionModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// AddTranscript inserts a new transcript record. Title, video ID, and
// transcript are required and the video ID must not exist yet; validation
// failures never touch storage. Preacher is optional.
func (s *GormStore) AddTranscript(rec domain.TranscriptRecord) (int64, error) {
	if err := validateTranscript(rec); err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.Model(&TranscriptModel{}).Where("video_id = ?", rec.VideoID).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, fmt.Errorf("%w: video ID %q", domain.ErrAlreadyExists, rec.VideoID)
	}
	model := transcriptToModel(rec)
	if err := s.db.Create(&model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

func validateTranscript(rec domain.TranscriptRecord) error {
	if rec.Title == "" || rec.VideoID == "" || rec.Transcript == "" {
		return fmt.Errorf("%w: title, video ID, and transcript are required", domain.ErrInvalidInput)
	}
	return nil
}

// GetTranscriptByVideoID looks up a transcript record by video ID.
func (s *GormStore) GetTranscriptByVideoID(videoID string) (domain.TranscriptRecord, bool, error) {
	return s.getTranscript("video_id = ?", videoID)
}

// GetTranscriptByTitle looks up a transcript record by title.
func (s *GormStore) GetTranscriptByTitle(title string) (domain.TranscriptRecord, bool, error) {
	return s.getTranscript("title = ?", title)
}

func (s *GormStore) getTranscript(cond string, arg any) (domain.TranscriptRecord, bool, error) {
	var model TranscriptModel
	if err := s.db.First(&model, cond, arg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.TranscriptRecord{}, false, nil
		}
		return domain.TranscriptRecord{}, false, err
	}
	return transcriptFromModel(model), true, nil
}

// VideoIDByTitle returns the video ID recorded for a title.
func (s *GormStore) VideoIDByTitle(title string) (string, bool, error) {
	rec, ok, err := s.GetTranscriptByTitle(title)
	if err != nil || !ok {
		return "", false, err
	}
	return rec.VideoID, true, nil
}

// UpdateTranscriptTitle renames the record for a video ID.
func (s *GormStore) UpdateTranscriptTitle(videoID, newTitle string) (bool, error) {
	return s.updateTranscriptColumns("video_id = ?", videoID, map[string]any{"title": newTitle})
}

// UpdateTranscriptByTitle replaces the transcript text for a title.
func (s *GormStore) UpdateTranscriptByTitle(title, transcript string) (bool, error) {
	return s.updateTranscriptColumns("title = ?", title, map[string]any{"transcript": transcript})
}

// UpdateTranscriptByVideoID replaces the transcript text for a video ID.
func (s *GormStore) UpdateTranscriptByVideoID(videoID, transcript string) (bool, error) {
	return s.updateTranscriptColumns("video_id = ?", videoID, map[string]any{"transcript": transcript})
}

func (s *GormStore) updateTranscriptColumns(cond string, arg any, updates map[string]any) (bool, error) {
	res := s.db.Model(&TranscriptModel{}).Where(cond, arg).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteTranscriptByVideoID removes the record for a video ID.
func (s *GormStore) DeleteTranscriptByVideoID(videoID string) (bool, error) {
	res := s.db.Delete(&TranscriptModel{}, "video_id = ?", videoID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteTranscriptByPK removes the record with the given primary key.
func (s *GormStore) DeleteTranscriptByPK(id int64) (bool, error) {
	res := s.db.Delete(&TranscriptModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListTranscripts returns all transcript records ordered by primary key.
func (s *GormStore) ListTranscripts() ([]domain.TranscriptRecord, error) {
	var models []TranscriptModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.TranscriptRecord, 0, len(models))
	for _, m := range models {
		res = append(res, transcriptFromModel(m))
	}
	return res, nil
}

// ListTranscriptTitles returns the titles of all cached transcripts.
func (s *GormStore) ListTranscriptTitles() ([]string, error) {
	var titles []string
	if err := s.db.Model(&TranscriptModel{}).Order("id ASC").Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

// TranscriptExistsByTitle checks whether a record exists for the title.
func (s *GormStore) TranscriptExistsByTitle(title string) (bool, error) {
	var count int64
	if err := s.db.Model(&TranscriptModel{}).Where("title = ?", title).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveUser inserts or updates a user profile.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "picture", "updated_at"}),
	}).Create(&model).Error
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	return s.getUser("email = ?", email)
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	return s.getUser("id = ?", id)
}

func (s *GormStore) getUser(cond string, arg any) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, cond, arg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

var userUpdateColumns = map[string]string{
	"email":      "email",
	"first_name": "first_name",
	"last_name":  "last_name",
	"picture":    "picture",
}

// UpdateUser merges the provided fields into the user record and returns the
// updated profile.
func (s *GormStore) UpdateUser(id string, fields map[string]any) (domain.User, bool, error) {
	updates, err := filterColumns(fields, userUpdateColumns)
	if err != nil {
		return domain.User{}, false, err
	}
	updates["updated_at"] = time.Now().UTC()
	res := s.db.Model(&UserModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return domain.User{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.User{}, false, nil
	}
	return s.GetUserByID(id)
}

// DeleteUser removes a user profile.
func (s *GormStore) DeleteUser(id string) (bool, error) {
	res := s.db.Delete(&UserModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpsertToken stores the single live token for a user.
func (s *GormStore) UpsertToken(t domain.AccessToken) error {
	model := tokenToModel(t)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "token_type", "expires_at"}),
	}).Create(&model).Error
}

// GetToken returns the stored token record for a user, expired or not.
// Liveness is the token service's concern.
func (s *GormStore) GetToken(userID string) (domain.AccessToken, bool, error) {
	var model AccessTokenModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.AccessToken{}, false, nil
		}
		return domain.AccessToken{}, false, err
	}
	return tokenFromModel(model), true, nil
}

// DeleteToken removes a user's token unconditionally.
func (s *GormStore) DeleteToken(userID string) (bool, error) {
	res := s.db.Delete(&AccessTokenModel{}, "user_id = ?", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveConversation appends a conversation to the owner's list.
func (s *GormStore) SaveConversation(c domain.Conversation) error {
	model, err := conversationToModel(c)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetConversation returns one conversation by its generated ID.
func (s *GormStore) GetConversation(id string) (domain.Conversation, bool, error) {
	var model ConversationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	conv, err := conversationFromModel(model)
	if err != nil {
		return domain.Conversation{}, false, err
	}
	return conv, true, nil
}

// ListConversationsByUser returns the user's conversations in insertion order.
func (s *GormStore) ListConversationsByUser(userID string) ([]domain.Conversation, error) {
	var models []ConversationModel
	if err := s.db.Where("user_id = ?", userID).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Conversation, 0, len(models))
	for _, m := range models {
		conv, err := conversationFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, conv)
	}
	return res, nil
}

// UpdateConversation replaces name, prompt list, and modification timestamp.
func (s *GormStore) UpdateConversation(id, name string, prompts []domain.Prompt, modified time.Time) (bool, error) {
	raw, err := marshalPrompts(prompts)
	if err != nil {
		return false, err
	}
	res := s.db.Model(&ConversationModel{}).Where("id = ?", id).Updates(map[string]any{
		"name":          name,
		"prompts":       datatypes.JSON(raw),
		"date_modified": modified.UTC(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteConversation pulls a conversation from the given user's list and
// reports whether anything was removed.
func (s *GormStore) DeleteConversation(userID, conversationID string) (bool, error) {
	res := s.db.Delete(&ConversationModel{}, "user_id = ? AND id = ?", userID, conversationID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveSermon stores uploaded sermon metadata.
func (s *GormStore) SaveSermon(doc domain.SermonDocument) error {
	model := sermonToModel(doc)
	return s.db.Create(&model).Error
}

// GetSermonByID returns a sermon document by its generated ID.
func (s *GormStore) GetSermonByID(id string) (domain.SermonDocument, bool, error) {
	return s.getSermon("id = ?", id)
}

// GetSermonByTitle returns the first sermon document with the title.
func (s *GormStore) GetSermonByTitle(title string) (domain.SermonDocument, bool, error) {
	return s.getSermon("title = ?", title)
}

// GetSermonByMinister returns the first sermon document for the minister.
func (s *GormStore) GetSermonByMinister(minister string) (domain.SermonDocument, bool, error) {
	return s.getSermon("minister = ?", minister)
}

func (s *GormStore) getSermon(cond string, arg any) (domain.SermonDocument, bool, error) {
	var model SermonModel
	if err := s.db.First(&model, cond, arg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.SermonDocument{}, false, nil
		}
		return domain.SermonDocument{}, false, err
	}
	return sermonFromModel(model), true, nil
}

var sermonUpdateColumns = map[string]string{
	"title":        "title",
	"cover_url":    "cover_url",
	"document_url": "document_url",
	"minister":     "minister",
	"description":  "description",
}

// UpdateSermon merges the provided fields into the sermon record.
func (s *GormStore) UpdateSermon(id string, fields map[string]any) (bool, error) {
	updates, err := filterColumns(fields, sermonUpdateColumns)
	if err != nil {
		return false, err
	}
	updates["updated_at"] = time.Now().UTC()
	res := s.db.Model(&SermonModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteSermon removes a sermon document.
func (s *GormStore) DeleteSermon(id string) (bool, error) {
	res := s.db.Delete(&SermonModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListSermons returns all sermon documents ordered by creation time.
func (s *GormStore) ListSermons() ([]domain.SermonDocument, error) {
	var models []SermonModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SermonDocument, 0, len(models))
	for _, m := range models {
		res = append(res, sermonFromModel(m))
	}
	return res, nil
}

// ResolveCollection returns the vector collection name for a video ID,
// creating the mapping on first use. Names start from the leading characters
// of the video ID and grow until they no longer collide with a mapping held
// by another video.
func (s *GormStore) ResolveCollection(videoID string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("%w: video ID required", domain.ErrInvalidInput)
	}
	var existing CollectionModel
	err := s.db.First(&existing, "video_id = ?", videoID).Error
	if err == nil {
		return existing.Name, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", err
	}
	for _, name := range collectionCandidates(videoID) {
		var held CollectionModel
		err := s.db.First(&held, "name = ?", name).Error
		if err == gorm.ErrRecordNotFound {
			if err := s.db.Create(&CollectionModel{Name: name, VideoID: videoID}).Error; err != nil {
				return "", err
			}
			return name, nil
		}
		if err != nil {
			return "", err
		}
		if held.VideoID == videoID {
			return name, nil
		}
	}
	return "", fmt.Errorf("no collision-free collection name for video %q", videoID)
}

// LookupCollection returns the collection name already mapped to a video ID.
// Unlike ResolveCollection it never creates a mapping.
func (s *GormStore) LookupCollection(videoID string) (string, bool, error) {
	var existing CollectionModel
	if err := s.db.First(&existing, "video_id = ?", videoID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return existing.Name, true, nil
}

// collectionCandidates lists names to try, shortest prefix first.
func collectionCandidates(videoID string) []string {
	runes := []rune(videoID)
	if len(runes) <= collectionPrefixLen {
		return []string{videoID}
	}
	names := make([]string, 0, len(runes)-collectionPrefixLen+1)
	for n := collectionPrefixLen; n <= len(runes); n++ {
		names = append(names, string(runes[:n]))
	}
	return names
}

func filterColumns(fields map[string]any, allowed map[string]string) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}
	updates := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		column, ok := allowed[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, key)
		}
		updates[column] = value
	}
	return updates, nil
}

func transcriptToModel(rec domain.TranscriptRecord) TranscriptModel {
	return TranscriptModel{
		ID:         rec.ID,
		Title:      rec.Title,
		Preacher:   rec.Preacher,
		VideoID:    rec.VideoID,
		Transcript: rec.Transcript,
	}
}

func transcriptFromModel(m TranscriptModel) domain.TranscriptRecord {
	return domain.TranscriptRecord{
		ID:         m.ID,
		Title:      m.Title,
		Preacher:   m.Preacher,
		VideoID:    m.VideoID,
		Transcript: m.Transcript,
	}
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Picture:   u.Picture,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Picture:   m.Picture,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func tokenToModel(t domain.AccessToken) AccessTokenModel {
	return AccessTokenModel{
		UserID:      t.UserID,
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresAt:   t.ExpiresAt.UTC(),
	}
}

func tokenFromModel(m AccessTokenModel) domain.AccessToken {
	return domain.AccessToken{
		UserID:      m.UserID,
		AccessToken: m.AccessToken,
		TokenType:   m.TokenType,
		ExpiresAt:   m.ExpiresAt,
	}
}

func conversationToModel(c domain.Conversation) (ConversationModel, error) {
	raw, err := marshalPrompts(c.Prompts)
	if err != nil {
		return ConversationModel{}, err
	}
	return ConversationModel{
		ID:           c.ID,
		UserID:       c.UserID,
		Name:         c.Name,
		Prompts:      datatypes.JSON(raw),
		DateModified: c.DateModified.UTC(),
	}, nil
}

func conversationFromModel(m ConversationModel) (domain.Conversation, error) {
	var prompts []domain.Prompt
	if len(m.Prompts) > 0 {
		if err := json.Unmarshal(m.Prompts, &prompts); err != nil {
			return domain.Conversation{}, fmt.Errorf("decode prompts: %w", err)
		}
	}
	return domain.Conversation{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Prompts:      prompts,
		DateModified: m.DateModified,
	}, nil
}

func marshalPrompts(prompts []domain.Prompt) ([]byte, error) {
	if prompts == nil {
		prompts = []domain.Prompt{}
	}
	raw, err := json.Marshal(prompts)
	if err != nil {
		return nil, fmt.Errorf("encode prompts: %w", err)
	}
	return raw, nil
}

func sermonToModel(doc domain.SermonDocument) SermonModel {
	return SermonModel{
		ID:          doc.ID,
		Title:       doc.Title,
		CoverURL:    doc.CoverURL,
		DocumentURL: doc.DocumentURL,
		Minister:    doc.Minister,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func sermonFromModel(m SermonModel) domain.SermonDocument {
	return domain.SermonDocument{
		ID:          m.ID,
		Title:       m.Title,
		CoverURL:    m.CoverURL,
		DocumentURL: m.DocumentURL,
		Minister:    m.Minister,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
