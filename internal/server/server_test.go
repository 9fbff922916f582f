package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"sermonbot/internal/app"
	"sermonbot/pkg/ai"
	"sermonbot/pkg/domain"
	"sermonbot/pkg/store"
	"sermonbot/pkg/vector"
	"sermonbot/pkg/youtube"
)

type fakeTranscriptAPI struct{}

func (fakeTranscriptAPI) FetchTranscript(_ context.Context, videoID string) ([]youtube.Segment, error) {
	return nil, fmt.Errorf("no captions available for video %q", videoID)
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedText(_ context.Context, text, _ string) ([]float32, error) {
	return embedStub(text), nil
}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string, _ string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = embedStub(text)
	}
	return vecs, nil
}

func embedStub(text string) []float32 {
	vec := make([]float32, 8)
	for i, r := range strings.ToLower(text) {
		vec[i%8] += float32(r%13) + 1
	}
	return vec
}

type stubReranker struct{}

func (stubReranker) Rerank(_ context.Context, _ string, texts []string, topN int) ([]ai.RankedText, error) {
	ranked := make([]ai.RankedText, 0, len(texts))
	for i, text := range texts {
		ranked = append(ranked, ai.RankedText{Text: text, Score: float64(len(texts) - i)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	appCore, err := app.New(app.Config{
		Store:          mem,
		TokenStore:     mem,
		Index:          vector.NewMemoryIndex(),
		Transcript:     fakeTranscriptAPI{},
		Embedder:       stubEmbedder{},
		Reranker:       stubReranker{},
		TokenSecret:    "test-secret",
		TokenAlgorithm: "HS256",
		TokenTTL:       time.Hour,
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	srv := httptest.NewServer(New(Config{App: appCore}).Router())
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url, token string, payload any, out any) int {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestEndToEndConversationFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// Register alice and get a token.
	var alice domain.User
	if code := doJSON(t, http.MethodPost, srv.URL+"/users", "",
		map[string]string{"email": "alice@example.com", "firstName": "Alice"}, &alice); code != http.StatusCreated {
		t.Fatalf("create user: status %d", code)
	}
	var token domain.AccessToken
	if code := doJSON(t, http.MethodPost, srv.URL+"/auth/token", "",
		map[string]string{"userId": alice.ID}, &token); code != http.StatusOK {
		t.Fatalf("create token: status %d", code)
	}
	if token.TokenType != domain.TokenTypeBearer {
		t.Fatalf("token type = %q", token.TokenType)
	}

	// Requesting a token again returns the same live token.
	var again domain.AccessToken
	doJSON(t, http.MethodPost, srv.URL+"/auth/token", "", map[string]string{"userId": alice.ID}, &again)
	if again.AccessToken != token.AccessToken {
		t.Fatal("live token not reused")
	}

	// Bearer auth is enforced.
	if code := doJSON(t, http.MethodGet, srv.URL+"/conversations", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status %d", code)
	}

	// Start a conversation and add an exchange.
	var conv domain.Conversation
	if code := doJSON(t, http.MethodPost, srv.URL+"/conversations", token.AccessToken, nil, &conv); code != http.StatusCreated {
		t.Fatalf("create conversation: status %d", code)
	}
	if conv.Name != domain.DefaultConversationName {
		t.Fatalf("fresh conversation name = %q", conv.Name)
	}
	var updated domain.Conversation
	if code := doJSON(t, http.MethodPost, srv.URL+"/conversations/"+conv.ID+"/prompts", token.AccessToken,
		map[string]string{"question": "What is grace?", "answer": "A gift."}, &updated); code != http.StatusOK {
		t.Fatalf("add prompt: status %d", code)
	}
	if updated.Name != "What is grace?" {
		t.Fatalf("conversation name after prompt = %q", updated.Name)
	}

	var pairs struct {
		Items [][2]string `json:"items"`
		Count int         `json:"count"`
	}
	if code := doJSON(t, http.MethodGet, srv.URL+"/conversations/"+conv.ID+"/prompts?pairs=true",
		token.AccessToken, nil, &pairs); code != http.StatusOK {
		t.Fatalf("list pairs: status %d", code)
	}
	if pairs.Count != 1 || pairs.Items[0] != [2]string{"What is grace?", "A gift."} {
		t.Fatalf("pairs = %+v", pairs)
	}

	// Bob cannot delete alice's conversation.
	var bob domain.User
	doJSON(t, http.MethodPost, srv.URL+"/users", "", map[string]string{"email": "bob@example.com", "firstName": "Bob"}, &bob)
	var bobToken domain.AccessToken
	doJSON(t, http.MethodPost, srv.URL+"/auth/token", "", map[string]string{"userId": bob.ID}, &bobToken)
	if code := doJSON(t, http.MethodDelete, srv.URL+"/conversations/"+conv.ID, bobToken.AccessToken, nil, nil); code != http.StatusNotFound {
		t.Fatalf("foreign delete: status %d", code)
	}
	if code := doJSON(t, http.MethodDelete, srv.URL+"/conversations/"+conv.ID, token.AccessToken, nil, nil); code != http.StatusNoContent {
		t.Fatalf("owner delete: status %d", code)
	}

	// Logout revokes the token.
	if code := doJSON(t, http.MethodPost, srv.URL+"/auth/logout", token.AccessToken, nil, nil); code != http.StatusNoContent {
		t.Fatalf("logout: status %d", code)
	}
	if code := doJSON(t, http.MethodGet, srv.URL+"/conversations", token.AccessToken, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: status %d", code)
	}
}

func TestSermonTranscriptToolEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)

	var user domain.User
	doJSON(t, http.MethodPost, srv.URL+"/users", "", map[string]string{"email": "alice@example.com", "firstName": "Alice"}, &user)
	var token domain.AccessToken
	doJSON(t, http.MethodPost, srv.URL+"/auth/token", "", map[string]string{"userId": user.ID}, &token)

	var resp struct {
		Contents string `json:"contents"`
	}
	if code := doJSON(t, http.MethodPost, srv.URL+"/tools/sermon-transcript", token.AccessToken,
		map[string]string{"title": "No Such Sermon", "query": "light"}, &resp); code != http.StatusOK {
		t.Fatalf("tool call: status %d", code)
	}
	if resp.Contents != app.NoContentsMessage {
		t.Fatalf("contents = %q", resp.Contents)
	}

	if _, err := mem.AddTranscript(domain.TranscriptRecord{
		Title:      "Creation",
		Preacher:   "Jane Doe",
		VideoID:    "creation1234",
		Transcript: strings.Repeat("and God said let there be light and there was light ", 10),
	}); err != nil {
		t.Fatalf("AddTranscript: %v", err)
	}
	if code := doJSON(t, http.MethodPost, srv.URL+"/tools/sermon-transcript", token.AccessToken,
		map[string]string{"title": "Creation", "query": "light"}, &resp); code != http.StatusOK {
		t.Fatalf("tool call: status %d", code)
	}
	if !strings.Contains(resp.Contents, "light") {
		t.Fatalf("contents = %q", resp.Contents)
	}
}

func TestSermonCRUDEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var user domain.User
	doJSON(t, http.MethodPost, srv.URL+"/users", "", map[string]string{"email": "alice@example.com", "firstName": "Alice"}, &user)
	var token domain.AccessToken
	doJSON(t, http.MethodPost, srv.URL+"/auth/token", "", map[string]string{"userId": user.ID}, &token)

	var sermon domain.SermonDocument
	if code := doJSON(t, http.MethodPost, srv.URL+"/sermons", token.AccessToken,
		map[string]string{"title": "The Vine", "minister": "Jane Doe"}, &sermon); code != http.StatusCreated {
		t.Fatalf("create sermon: status %d", code)
	}
	if code := doJSON(t, http.MethodPost, srv.URL+"/sermons", token.AccessToken,
		map[string]string{"title": "The Vine", "minister": "Someone Else"}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate sermon: status %d", code)
	}

	var fetched domain.SermonDocument
	if code := doJSON(t, http.MethodGet, srv.URL+"/sermons?minister=Jane+Doe", token.AccessToken, nil, &fetched); code != http.StatusOK {
		t.Fatalf("find by minister: status %d", code)
	}
	if fetched.ID != sermon.ID {
		t.Fatalf("found sermon %q, want %q", fetched.ID, sermon.ID)
	}

	if code := doJSON(t, http.MethodPatch, srv.URL+"/sermons/"+sermon.ID, token.AccessToken,
		map[string]string{"description": "On abiding"}, &fetched); code != http.StatusOK {
		t.Fatalf("patch sermon: status %d", code)
	}
	if fetched.Description != "On abiding" {
		t.Fatalf("description = %q", fetched.Description)
	}

	if code := doJSON(t, http.MethodDelete, srv.URL+"/sermons/"+sermon.ID, token.AccessToken, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete sermon: status %d", code)
	}
	if code := doJSON(t, http.MethodGet, srv.URL+"/sermons/"+sermon.ID, token.AccessToken, nil, nil); code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", code)
	}
}
