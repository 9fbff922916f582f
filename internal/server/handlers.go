package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"sermonbot/pkg/domain"
)

const maxBodyBytes = 1 << 20

// auth handlers

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req tokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	token, err := s.app.CreateAccessToken(req.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req validateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID, err := s.app.ValidateAccessToken(req.AccessToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": userID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if _, err := s.app.DeleteAccessToken(userID); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// user handlers

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createUserRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := s.app.CreateUser(req.Email, req.FirstName, req.LastName, req.Picture)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	case http.MethodGet:
		email := r.URL.Query().Get("email")
		if email == "" {
			writeError(w, http.StatusBadRequest, "email query parameter is required")
			return
		}
		user, err := s.app.GetUserByEmail(email)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.app.GetUser(userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodPatch:
		var fields map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := s.app.UpdateUser(userID, fields)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodDelete:
		if err := s.app.DeleteUser(userID); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

// conversation handlers

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		conversations, err := s.app.GetConversations(userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": conversations,
			"count": len(conversations),
		})
	case http.MethodPost:
		conversation, err := s.app.CreateConversation(userID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, conversation)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request, userID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/conversations/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	switch sub {
	case "":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		removed, err := s.app.DeleteConversation(userID, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if !removed {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "prompts":
		s.handlePrompts(w, r, userID, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request, userID, conversationID string) {
	switch r.Method {
	case http.MethodGet:
		asPairs := r.URL.Query().Get("pairs") == "true"
		prompts, pairs, err := s.app.GetPrompts(userID, conversationID, asPairs)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if asPairs {
			writeJSON(w, http.StatusOK, map[string]any{"items": pairs, "count": len(pairs)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": prompts, "count": len(prompts)})
	case http.MethodPost:
		var req addPromptRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Question == "" {
			writeError(w, http.StatusBadRequest, "question is required")
			return
		}
		// With an answer the exchange is stored as-is; without one the
		// answer is generated against the named sermon's transcript.
		if req.Answer != "" {
			conversation, err := s.app.AddPrompt(userID, conversationID, domain.Prompt{
				Question: req.Question,
				Answer:   req.Answer,
			})
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, conversation)
			return
		}
		if req.SermonTitle == "" {
			writeError(w, http.StatusBadRequest, "sermonTitle is required to generate an answer")
			return
		}
		conversation, err := s.app.Ask(r.Context(), userID, conversationID, req.SermonTitle, req.Question)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conversation)
	default:
		methodNotAllowed(w)
	}
}

// sermon handlers

func (s *Server) handleSermons(w http.ResponseWriter, r *http.Request, _ string) {
	switch r.Method {
	case http.MethodGet:
		if title, minister := r.URL.Query().Get("title"), r.URL.Query().Get("minister"); title != "" || minister != "" {
			sermon, err := s.app.FindSermon(title, minister)
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, sermon)
			return
		}
		sermons, err := s.app.ListSermons()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": sermons, "count": len(sermons)})
	case http.MethodPost:
		var req createSermonRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		sermon, err := s.app.CreateSermon(req.Title, req.Minister, req.Description)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sermon)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSermonByID(w http.ResponseWriter, r *http.Request, _ string) {
	rest := strings.TrimPrefix(r.URL.Path, "/sermons/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	switch sub {
	case "":
		s.handleSermon(w, r, id)
	case "document":
		s.handleSermonDocument(w, r, id)
	case "cover":
		s.handleSermonCover(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSermon(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sermon, err := s.app.GetSermon(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sermon)
	case http.MethodPatch:
		var fields map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.app.UpdateSermon(id, fields); err != nil {
			writeAppError(w, err)
			return
		}
		sermon, err := s.app.GetSermon(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sermon)
	case http.MethodDelete:
		if err := s.app.DeleteSermon(r.Context(), id); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSermonDocument(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		filename := r.URL.Query().Get("filename")
		if filename == "" {
			writeError(w, http.StatusBadRequest, "filename query parameter is required")
			return
		}
		sermon, err := s.app.UploadSermonDocument(r.Context(), id, filename, r.Body, r.ContentLength, r.Header.Get("Content-Type"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sermon)
	case http.MethodGet:
		url, err := s.app.SermonDocumentURL(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSermonCover(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "filename query parameter is required")
		return
	}
	sermon, err := s.app.UploadSermonCover(r.Context(), id, filename, r.Body, r.ContentLength, r.Header.Get("Content-Type"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sermon)
}

// tool handlers

func (s *Server) handleSermonTranscriptTool(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req transcriptToolRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" || req.Query == "" {
		writeError(w, http.StatusBadRequest, "title and query are required")
		return
	}
	contents, err := s.app.SermonTranscriptTool(r.Context(), req.Title, req.Query)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"contents": contents})
}

type tokenRequest struct {
	UserID string `json:"userId"`
}

type validateRequest struct {
	AccessToken string `json:"accessToken"`
}

type createUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Picture   string `json:"picture"`
}

type addPromptRequest struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	SermonTitle string `json:"sermonTitle"`
}

type createSermonRequest struct {
	Title       string `json:"title"`
	Minister    string `json:"minister"`
	Description string `json:"description"`
}

type transcriptToolRequest struct {
	Title string `json:"title"`
	Query string `json:"query"`
}
