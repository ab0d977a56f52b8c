package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorchat/internal/blob"
	"mentorchat/internal/config"
	"mentorchat/internal/corpus"
	"mentorchat/internal/history"
	"mentorchat/internal/index"
	"mentorchat/internal/models"
	"mentorchat/internal/providers"
	"mentorchat/internal/rag"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "https://issuer.example"
	testAudience = "mentorchat-test"
)

type fixture struct {
	server    *Server
	handler   http.Handler
	llm       *providers.MockProvider
	blobStore *blob.Memory
	histories *history.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Load()
	cfg.JWTSecret = testSecret
	cfg.JWTIssuer = testIssuer
	cfg.JWTAudience = testAudience

	embedder := providers.NewMockProvider(256)
	llm := providers.NewMockProvider(256)
	llm.Response = "Mocked mentor advice."

	doc := models.Document{ID: "aaaaaaaaaaaaaaaa", Source: "corpus.txt", Text: "Oahu is an island."}
	x, err := index.Build(context.Background(), embedder, corpus.SplitAll([]models.Document{doc}, 1000, 200), 8)
	require.NoError(t, err)

	store := blob.NewMemory()
	histories := history.NewStore(store, cfg.HistoryPrefix)
	pipeline := rag.NewPipeline(x, embedder, llm, rag.Options{TopK: cfg.TopK})
	srv := NewServer(cfg, pipeline, histories)
	return &fixture{
		server:    srv,
		handler:   srv.Routes(),
		llm:       llm,
		blobStore: store,
		histories: histories,
	}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doChat(t *testing.T, f *fixture, token string, req models.ChatRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httpReq)
	return rec
}

func TestChatHappyPathSavesHistory(t *testing.T) {
	f := newFixture(t)
	rec := doChat(t, f, signToken(t, "user-1"), models.ChatRequest{
		UserID:  "user-1",
		Message: "Tell me about Oahu",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Mocked mentor advice.", resp.Response)

	turns, err := f.histories.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, models.Turn{Role: models.RoleUser, Content: "Tell me about Oahu"}, turns[0])
	require.Equal(t, models.Turn{Role: models.RoleAssistant, Content: "Mocked mentor advice."}, turns[1])

	// The generator saw the retrieved corpus text as context.
	msgs := f.llm.LastCall()
	require.Contains(t, msgs[0].Content, "Oahu is an island.")
}

func TestChatMergesStoredAndPostedHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.histories.Save(ctx, "user-1", []models.Turn{
		{Role: models.RoleUser, Content: "stored question"},
		{Role: models.RoleAssistant, Content: "stored answer"},
	}))

	rec := doChat(t, f, signToken(t, "user-1"), models.ChatRequest{
		UserID:  "user-1",
		Message: "next question",
		ChatHistory: []models.Turn{
			{Role: models.RoleUser, Content: "posted question"},
			{Role: models.RoleAssistant, Content: "posted answer"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	turns, err := f.histories.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, turns, 6)
	require.Equal(t, "stored question", turns[0].Content)
	require.Equal(t, "posted question", turns[2].Content)
	require.Equal(t, "next question", turns[4].Content)
}

func TestChatRequiresBearerToken(t *testing.T) {
	f := newFixture(t)
	rec := doChat(t, f, "", models.ChatRequest{UserID: "user-1", Message: "hi"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "MC-AUTH-4001")
}

func TestChatRejectsUserMismatch(t *testing.T) {
	f := newFixture(t)
	rec := doChat(t, f, signToken(t, "someone-else"), models.ChatRequest{UserID: "user-1", Message: "hi"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "MC-AUTH-4003")
}

func TestChatRejectsBadToken(t *testing.T) {
	f := newFixture(t)
	rec := doChat(t, f, "not.a.jwt", models.ChatRequest{UserID: "user-1", Message: "hi"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatRejectsMissingFields(t *testing.T) {
	f := newFixture(t)
	rec := doChat(t, f, signToken(t, "user-1"), models.ChatRequest{UserID: "user-1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatGenerationFailureDoesNotSaveHistory(t *testing.T) {
	f := newFixture(t)
	f.llm.Fails = 10
	f.llm.FailWith = errors.New("model is overloaded, try again")

	rec := doChat(t, f, signToken(t, "user-1"), models.ChatRequest{UserID: "user-1", Message: "hello"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "MC-RAG-5020")
	// Upstream error text must not leak to the caller.
	require.NotContains(t, rec.Body.String(), "overloaded")

	turns, err := f.histories.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, turns)
	require.Equal(t, 0, f.blobStore.Len())
}

func TestHistoryGetReturnsStoredTurns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.histories.Save(ctx, "user-1", []models.Turn{
		{Role: models.RoleUser, Content: "q"},
		{Role: models.RoleAssistant, Content: "a"},
	}))

	req := httptest.NewRequest(http.MethodGet, "/history?user_id=user-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		History []models.Turn `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.History, 2)
}

func TestHistoryDeleteClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.histories.Save(ctx, "user-1", []models.Turn{{Role: models.RoleUser, Content: "q"}}))

	req := httptest.NewRequest(http.MethodDelete, "/history?user_id=user-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	turns, err := f.histories.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestHistoryClearLegacyRoute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.histories.Save(ctx, "user-1", []models.Turn{{Role: models.RoleUser, Content: "q"}}))

	req := httptest.NewRequest(http.MethodPost, "/history/clear?user_id=user-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	turns, err := f.histories.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
