package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/types"
)

func TestQuerySuccess(t *testing.T) {
	var gotReq types.QueryRequest
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/query", r.URL.Path)
		gotHeaders = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Keep receipts for seven years."}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.BaseURL())

	text, err := c.Query(context.Background(), "How long do I keep receipts?")
	require.NoError(t, err)
	assert.Equal(t, "Keep receipts for seven years.", text)
	assert.Equal(t, "How long do I keep receipts?", gotReq.Prompt)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	_, err = uuid.Parse(gotHeaders.Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestQueryStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to generate response","details":"Response was blocked due to safety concerns"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Query(context.Background(), "q")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "Failed to generate response", se.Message)
	assert.Equal(t, "Response was blocked due to safety concerns", se.Details)
}

func TestQueryNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Query(context.Background(), "q")
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

func TestQueryTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Query(context.Background(), "q")
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %T: %v", err, err)
}

func TestQueryCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Query(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrompts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prompts", r.URL.Path)
		_, _ = w.Write([]byte(`{"prompts":["a","b"]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	got, err := c.Prompts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestCookiesAreSentBack(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("sid"); err == nil {
			seen = ck.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte(`{"prompts":[]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Prompts(context.Background())
	require.NoError(t, err)
	_, err = c.Prompts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", seen)
}
