package devserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submission"
)

const submitTime = "2026-03-01T10:00:00.000Z"

func post(t *testing.T, srv *Server, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var out Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestContactAccepted(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC)
	srv := New(DefaultConfig(), WithNow(func() time.Time { return fixed }))

	body := `{"name":"Ada","email":"ada@example.com","message":"Hello there, friend","source":"landing","submitTime":"` + submitTime + `","pageUrl":"https://example.com/contact"}`
	rec := post(t, srv, "/api/contact", body, "X-Request-ID", "attempt-1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attempt-1", rec.Header().Get("X-Request-ID"))
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "attempt-1", resp.RequestID)

	received := srv.Received()
	require.Len(t, received, 1)
	assert.Equal(t, model.CategoryContact, received[0].Category)
	assert.Equal(t, "landing", received[0].Values["source"])
	assert.Equal(t, fixed, received[0].ReceivedAt)
}

func TestValidationErrorsUseJSONNames(t *testing.T) {
	srv := New(DefaultConfig())

	body := `{"name":"","email":"nope","phone":"12","date":"tomorrow","submitTime":"` + submitTime + `"}`
	rec := post(t, srv, "/api/appointment", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Please correct the highlighted fields", resp.Message)
	assert.Equal(t, []string{"This field is required"}, resp.Errors["name"])
	assert.Equal(t, []string{"Please enter a valid email address"}, resp.Errors["email"])
	assert.Equal(t, []string{"Please enter a valid phone number"}, resp.Errors["phone"])
	assert.Equal(t, []string{"The format is not valid"}, resp.Errors["date"])
	assert.Empty(t, srv.Received())
}

func TestMissingMetadataRejected(t *testing.T) {
	srv := New(DefaultConfig())

	rec := post(t, srv, "/api/newsletter", `{"email":"ada@example.com","submitTime":"yesterday"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Errors, "submitTime")
}

func TestMalformedBody(t *testing.T) {
	srv := New(DefaultConfig())

	rec := post(t, srv, "/api/newsletter", `[1,2]`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request body must be a JSON object", decode(t, rec).Message)
}

func TestFailureModes(t *testing.T) {
	body := `{"email":"ada@example.com","submitTime":"` + submitTime + `"}`

	t.Run("server", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Fail = FailServer
		cfg.FailureMessage = "server busy"
		rec := post(t, New(cfg), "/api/newsletter", body)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		serverErr, ok := submission.DecodeServerError(model.FormDefinition{}, rec.Body.Bytes())
		require.True(t, ok)
		assert.Equal(t, "server busy", serverErr.Message)
	})

	t.Run("validation", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Fail = FailValidation
		cfg.FailureMessage = "Already subscribed"
		rec := post(t, New(cfg), "/api/newsletter", body)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		def := model.FormDefinition{Fields: []model.Field{{Name: "email"}}}
		serverErr, ok := submission.DecodeServerError(def, rec.Body.Bytes())
		require.True(t, ok)
		assert.Equal(t, map[string][]string{"email": {"Already subscribed"}}, serverErr.Fields)
	})

	t.Run("html", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Fail = FailHTML
		rec := post(t, New(cfg), "/api/newsletter", body)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		_, ok := submission.DecodeServerError(model.FormDefinition{}, rec.Body.Bytes())
		assert.False(t, ok)
	})
}

func TestListAndHealth(t *testing.T) {
	srv := New(DefaultConfig())
	post(t, srv, "/api/newsletter", `{"email":"ada@example.com","submitTime":"`+submitTime+`"}`)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/submissions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []Submission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, model.CategoryNewsletter, resp.Data[0].Category)
	assert.NotEmpty(t, resp.Data[0].RequestID)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPreflight(t *testing.T) {
	srv := New(DefaultConfig())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/contact", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseFailureMode(t *testing.T) {
	mode, err := ParseFailureMode(" Validation ")
	require.NoError(t, err)
	assert.Equal(t, FailValidation, mode)

	_, err = ParseFailureMode("teapot")
	assert.ErrorIs(t, err, ErrUnknownFailureMode)
}
