package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"health-chatbot/internal/config"
	"health-chatbot/internal/core"
	"health-chatbot/internal/db"
	"health-chatbot/internal/llm"
	"health-chatbot/pkg"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(_ context.Context, _ []llm.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestServer(t *testing.T, client llm.Client) (*gin.Engine, *db.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Engine:     config.EngineSQLite,
		SQLitePath: t.TempDir() + "/test.db",
	}
	conn, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, cfg.Engine))

	store := db.NewStore(conn, cfg.Engine)
	chat := core.NewChatService(store, client, 20)
	return NewServer(store, chat).Router(), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	router, store := newTestServer(t, &fakeLLM{reply: "How long have you had the fever?"})

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{
		"message":    "I have a fever",
		"session_id": "s1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp pkg.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "How long have you had the fever?", resp.Reply)
	assert.Equal(t, "s1", resp.SessionID)

	messages, err := store.Messages(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, pkg.RoleSystem, messages[0].Role)
	assert.Equal(t, pkg.RoleUser, messages[1].Role)
	assert.Equal(t, pkg.RoleAssistant, messages[2].Role)
}

func TestChatEndpointGeneratesSessionID(t *testing.T) {
	router, _ := newTestServer(t, &fakeLLM{reply: "Hello!"})

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{"message": "Hi"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp pkg.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
}

func TestChatEndpointCompletionFailure(t *testing.T) {
	router, store := newTestServer(t, &fakeLLM{
		err: &llm.Error{Kind: llm.KindQuota, Message: "rate limit exceeded"},
	})

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{
		"message":    "I have a fever",
		"session_id": "s1",
	})
	// Completion failures still answer 200 with the error in the reply text.
	require.Equal(t, http.StatusOK, w.Code)

	var resp pkg.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Reply, "Error:"), "reply %q should carry the error", resp.Reply)
	assert.Equal(t, "s1", resp.SessionID)

	// The user message is persisted; no assistant row is written.
	messages, err := store.Messages(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, pkg.RoleSystem, messages[0].Role)
	assert.Equal(t, pkg.RoleUser, messages[1].Role)
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	router, _ := newTestServer(t, &fakeLLM{reply: "Hello!"})

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{"session_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterAndGetPatient(t *testing.T) {
	router, _ := newTestServer(t, &fakeLLM{reply: "Hello!"})

	w := doJSON(t, router, http.MethodPost, "/register-patient", gin.H{
		"firstName":      "Maria",
		"lastName":       "Santos",
		"age":            34,
		"sex":            "Female",
		"address":        "Quezon City",
		"contactNumber":  "09171234567",
		"medicalHistory": "Asthma",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var registered struct {
		Success   bool   `json:"success"`
		PatientID int64  `json:"patient_id"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.True(t, registered.Success)
	require.Greater(t, registered.PatientID, int64(0))

	w = doJSON(t, router, http.MethodGet, "/patient/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched struct {
		Success bool        `json:"success"`
		Patient pkg.Patient `json:"patient"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.True(t, fetched.Success)
	assert.Equal(t, "Maria", fetched.Patient.FirstName)
	assert.Equal(t, 34, fetched.Patient.Age)
}

func TestGetPatientNotFound(t *testing.T) {
	router, _ := newTestServer(t, &fakeLLM{reply: "Hello!"})

	w := doJSON(t, router, http.MethodGet, "/patient/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/patient/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatientSessionsEndpoint(t *testing.T) {
	router, store := newTestServer(t, &fakeLLM{reply: "Hello!"})

	patientID, err := store.CreatePatient(context.Background(), &pkg.Patient{
		FirstName: "Maria", LastName: "Santos", Age: 34, Sex: "Female",
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{
		"message":    "Hello",
		"session_id": "s1",
		"patient_id": patientID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/patient/1/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool          `json:"success"`
		Sessions []pkg.Session `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "s1", resp.Sessions[0].ID)
}

func TestNewChatEndpoint(t *testing.T) {
	router, store := newTestServer(t, &fakeLLM{reply: "Hello!"})

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{
		"message":    "I have a fever",
		"session_id": "s1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/new-chat", gin.H{"session_id": "s1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "New chat started", resp.Message)
	assert.Equal(t, "s1", resp.SessionID)

	count, err := store.CountMessages(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestServer(t, &fakeLLM{reply: "Hello!"})

	w := doJSON(t, router, http.MethodGet, "/health-check", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
