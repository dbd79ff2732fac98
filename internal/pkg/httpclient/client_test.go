package httpclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paystack-bridge/internal/pkg/httpclient"
)

func TestPostSendsBearerAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "x", body["k"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := httpclient.New().WithBaseURL(srv.URL).WithRetries(0)
	resp, err := c.Post(context.Background(), "/things", "sk_test", map[string]string{"k": "x"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := httpclient.New().
		WithBaseURL(srv.URL).
		WithRetries(2).
		WithRetryWait(time.Millisecond, 5*time.Millisecond)

	resp, err := c.Get(context.Background(), "/", "")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := httpclient.New().
		WithBaseURL(srv.URL).
		WithRetries(2).
		WithRetryWait(time.Millisecond, 5*time.Millisecond)

	resp, err := c.Get(context.Background(), "/", "k")
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := httpclient.New().WithBaseURL(srv.URL).WithRetries(0).WithTimeout(20 * time.Millisecond)
	_, err := c.Get(context.Background(), "/", "")
	assert.Error(t, err)
}
