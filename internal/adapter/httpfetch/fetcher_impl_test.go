package httpfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchUTF8(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>메인 배너</body></html>`))
	}))
	defer srv.Close()

	html, err := NewFetcher("test-agent", 5*time.Second, zap.NewNop()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "메인 배너")
	assert.Equal(t, "test-agent", gotUA)
}

func TestFetchDecodesLegacyCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		// "배너" in EUC-KR.
		_, _ = w.Write([]byte{'<', 'p', '>', 0xb9, 0xe8, 0xb3, 0xca, '<', '/', 'p', '>'})
	}))
	defer srv.Close()

	html, err := NewFetcher("test-agent", 5*time.Second, zap.NewNop()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<p>배너</p>", html)
}

func TestFetchRejectsNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFetcher("test-agent", 5*time.Second, zap.NewNop()).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
