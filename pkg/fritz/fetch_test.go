package fritz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageStateFetcher_Fetch(t *testing.T) {
	const markup = `<table><td>Tablet-Kids</td><td>00:04 of 02:10 hours</td></table>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data.lua", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "1", r.PostForm.Get("xhr"))
		assert.Equal(t, "9c977765016899f8", r.PostForm.Get("sid"))
		assert.Equal(t, "kidPro", r.PostForm.Get("page"))

		fmt.Fprint(w, markup)
	}))
	defer server.Close()

	f := NewUsageStateFetcher(server.URL, "")

	got, err := f.Fetch(context.Background(), "9c977765016899f8")
	require.NoError(t, err)
	assert.Equal(t, markup, got)
}

func TestUsageStateFetcher_CustomPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "kidLis", r.PostForm.Get("page"))
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	f := NewUsageStateFetcher(server.URL, "kidLis")

	_, err := f.Fetch(context.Background(), "sid")
	require.NoError(t, err)
}

func TestUsageStateFetcher_SessionExpiredStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewUsageStateFetcher(server.URL, "")

	_, err := f.Fetch(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestUsageStateFetcher_SessionExpiredBody(t *testing.T) {
	// An invalidated sid gets the login page back instead of data.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"sid":"0000000000000000","pid":"logout"}`)
	}))
	defer server.Close()

	f := NewUsageStateFetcher(server.URL, "")

	_, err := f.Fetch(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestUsageStateFetcher_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewUsageStateFetcher(server.URL, "")

	_, err := f.Fetch(context.Background(), "sid")
	require.Error(t, err)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.NotErrorIs(t, err, ErrSessionExpired)
}

func TestUsageStateFetcher_TransportError(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close()

	f := NewUsageStateFetcher(server.URL, "")

	_, err := f.Fetch(context.Background(), "sid")
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
