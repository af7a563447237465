package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/config"
	"chatsync/internal/dispatch"
	"chatsync/internal/domain"
	"chatsync/internal/sched"
	"chatsync/internal/state"
	"chatsync/internal/store"
	"chatsync/pkg/logger"
)

func newTestServer(t *testing.T) (*Server, *dispatch.Dispatcher, string) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Environment: "test"},
		Auth:   config.AuthConfig{JWTSecret: "test-secret"},
	}
	log := logger.NewNop()

	st := store.New(state.NewSnapshot("viewer", state.Settings{}))
	dispatcher := dispatch.New(st, sched.NewManual(), log, dispatch.Config{})

	srv := New(cfg, log, nil)
	hub := NewHub(st, log)
	srv.SetupRoutes(
		NewQueryHandler(dispatcher, log),
		NewWebSocketHandler(hub, dispatcher, []byte(cfg.Auth.JWTSecret)),
	)

	token := signToken(t, []byte(cfg.Auth.JWTSecret), "viewer", time.Hour)
	return srv, dispatcher, token
}

func doRequest(srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func TestIngestAndQueryThread(t *testing.T) {
	srv, _, token := newTestServer(t)

	body := `{
		"event_type": "chat.updated",
		"payload": {"chat": {"id": "c1", "type": "PRIVATE"}}
	}`
	rec := doRequest(srv, http.MethodPost, "/v1/updates", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body = `{
		"event_type": "message.new",
		"payload": {
			"chat_id": "c1",
			"id": 10,
			"message": {"chat_id": "c1", "id": 10, "content": {"text": {"text": "hi"}}, "date": 1700000000}
		}
	}`
	rec = doRequest(srv, http.MethodPost, "/v1/updates", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(srv, http.MethodGet, "/v1/chats/c1/threads/main/messages", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Messages []domain.Message `json:"messages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Messages, 1)
	assert.Equal(t, int64(10), resp.Data.Messages[0].ID)
}

func TestIngestRejectsUnknownKind(t *testing.T) {
	srv, _, token := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/v1/updates", token,
		`{"event_type": "message.unheard_of", "payload": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_KIND")
}

func TestQueryRequiresAuth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/chats/c1", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClassifyMessage(t *testing.T) {
	srv, dispatcher, token := newTestServer(t)

	dispatcher.Apply(dispatch.ChatUpdated{Chat: &domain.Chat{
		ID: "forum", Type: domain.ChatTypeSuperGroup, IsForum: true,
	}})
	msg := &domain.Message{
		ChatID:  "forum",
		ID:      20,
		Content: domain.Content{Text: &domain.TextContent{Text: "hi"}},
		Reply:   &domain.ReplyInfo{ReplyToTopID: 7, IsForumTopic: true},
		Date:    1700000000,
	}
	dispatcher.Apply(dispatch.NewMessage{ChatID: "forum", ID: 20, Message: msg})

	rec := doRequest(srv, http.MethodGet, "/v1/chats/forum/messages/20/thread", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("%q", "7"))
}
