package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/auth"
	"mindfulmate-backend/internal/llm"
	"mindfulmate-backend/internal/models"
	"mindfulmate-backend/internal/store"
	"mindfulmate-backend/internal/store/badgerstore"
	"mindfulmate-backend/internal/store/sqlite"
)

type scriptedProvider struct {
	name  string
	reply string
	err   error
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type testServer struct {
	e      *echo.Echo
	memory store.MemoryStore
}

func newTestServer(t *testing.T, providers ...llm.ChainEntry) *testServer {
	t.Helper()
	logger := zap.NewNop()

	authTier, err := sqlite.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { authTier.Close() })

	memoryTier, err := badgerstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { memoryTier.Close() })

	authStore := store.NewFallbackAuthStore(nil, authTier, 0, logger)
	memoryStore := store.NewFallbackMemoryStore(nil, memoryTier, 0, logger)

	authSvc := auth.NewService(authStore, 0, logger)
	assembler := llm.NewContextAssembler(memoryStore, 10)
	orchestrator := llm.NewOrchestrator(providers, zeroScorer{}, assembler, memoryStore, logger)

	e := echo.New()
	RegisterRoutes(e.Group("/api"), NewHandlers(authSvc, orchestrator, memoryStore, logger))

	return &testServer{e: e, memory: memoryStore}
}

type zeroScorer struct{}

func (zeroScorer) Score(ctx context.Context, text string) float64 { return 0 }

func (s *testServer) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) registerAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()
	rec := s.request(t, http.MethodPost, "/api/auth/register",
		`{"username":"`+username+`","email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.request(t, http.MethodPost, "/api/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func TestRegisterLoginJournalFlow(t *testing.T) {
	srv := newTestServer(t)

	token := srv.registerAndLogin(t, "alice", "alice@x.com", "pw123")

	// Current-user lookup with the fresh token.
	rec := srv.request(t, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.UserInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Username)

	rec = srv.request(t, http.MethodPost, "/api/journal",
		`{"title":"Morning","entry":"Felt okay","username":"alice"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.request(t, http.MethodGet, "/api/journal/user/alice", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Morning", entries[0].Title)
	assert.Equal(t, "Felt okay", entries[0].Entry)
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	srv := newTestServer(t)
	srv.registerAndLogin(t, "alice", "alice@x.com", "pw123")

	rec := srv.request(t, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"new@x.com","password":"pw"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.request(t, http.MethodPost, "/api/auth/register",
		`{"username":"bob","email":"alice@x.com","password":"pw"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice", "alice@x.com", "pw123")

	rec := srv.request(t, http.MethodPost, "/api/auth/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Logout again: idempotent.
	rec = srv.request(t, http.MethodPost, "/api/auth/logout", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.request(t, http.MethodGet, "/api/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatEmptyPromptRejected(t *testing.T) {
	srv := newTestServer(t, llm.ChainEntry{Provider: &scriptedProvider{name: "gemini", reply: "hi"}})

	rec := srv.request(t, http.MethodPost, "/api/chat", `{"prompt":"   "}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatAlwaysReplies(t *testing.T) {
	down := &llm.ProviderError{Provider: "gemini", Class: llm.Unavailable, Err: errors.New("gone")}
	srv := newTestServer(t, llm.ChainEntry{Provider: &scriptedProvider{name: "gemini", err: down}})

	rec := srv.request(t, http.MethodPost, "/api/chat", `{"prompt":"hello"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var reply llm.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, llm.FallbackReply, reply.Text)
	assert.Empty(t, reply.Provider)
}

func TestAnonymousTurnsNeverLeakIntoIdentity(t *testing.T) {
	srv := newTestServer(t, llm.ChainEntry{Provider: &scriptedProvider{name: "gemini", reply: "I hear you."}})
	token := srv.registerAndLogin(t, "alice", "alice@x.com", "pw123")

	// Two anonymous chats.
	for i := 0; i < 2; i++ {
		rec := srv.request(t, http.MethodPost, "/api/chat", `{"prompt":"anon message"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	date := time.Now().UTC().Format("2006-01-02")

	// Identity-scoped lookup sees none of them.
	rec := srv.request(t, http.MethodGet, "/api/conversations?date="+date, "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var turns []models.ConversationTurn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turns))
	assert.Empty(t, turns)

	// Anonymous lookup is empty as well, by the anti-leak guard.
	rec = srv.request(t, http.MethodGet, "/api/conversations?date="+date, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	turns = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turns))
	assert.Empty(t, turns)
}

func TestAuthenticatedChatOwnsItsTurns(t *testing.T) {
	srv := newTestServer(t, llm.ChainEntry{Provider: &scriptedProvider{name: "gemini", reply: "I hear you."}})
	token := srv.registerAndLogin(t, "alice", "alice@x.com", "pw123")

	rec := srv.request(t, http.MethodPost, "/api/chat", `{"prompt":"my message"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	date := time.Now().UTC().Format("2006-01-02")
	rec = srv.request(t, http.MethodGet, "/api/conversations?date="+date, "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var turns []models.ConversationTurn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turns))
	require.Len(t, turns, 1)
	assert.Equal(t, "my message", turns[0].UserInput)
	require.NotNil(t, turns[0].Username)
	assert.Equal(t, "alice", *turns[0].Username)
}

func TestHealthAndStatus(t *testing.T) {
	srv := newTestServer(t, llm.ChainEntry{Provider: &scriptedProvider{name: "gemini", reply: "hi"}})

	rec := srv.request(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.request(t, http.MethodGet, "/api/llm-status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Providers  []string `json:"providers"`
		Configured bool     `json:"configured"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Configured)
	assert.Equal(t, []string{"gemini"}, status.Providers)
}
