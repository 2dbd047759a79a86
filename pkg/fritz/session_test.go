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

func TestChallengeResponse(t *testing.T) {
	// Reference vector from the router vendor's login documentation.
	assert.Equal(t, "1234567z-9e224a41eeefa284df7bb0f26c2913e2",
		challengeResponse("1234567z", "äbc"))
	assert.Equal(t, "abc123-00ef4924fa626d8d664908df1dd79c75",
		challengeResponse("abc123", "secret"))
	// Code points above 0xff collapse to '.'.
	assert.Equal(t, "deadbeef-5224b214e23e8986d6c61199cf3ee62c",
		challengeResponse("deadbeef", "pässwörd€"))
}

func TestRejectedSID(t *testing.T) {
	assert.True(t, rejectedSID("0000000000000000"))
	assert.True(t, rejectedSID(""))
	assert.False(t, rejectedSID("9c977765016899f8"))
	assert.False(t, rejectedSID("0000000000000001"))
}

// newLoginServer fakes the router login endpoint. GET returns the
// challenge, POST checks the submitted response and returns sid (or
// the all-zero sid on mismatch).
func newLoginServer(t *testing.T, challenge, password, sid string, logins *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login_sid.lua", r.URL.Path)

		if r.Method == http.MethodGet {
			fmt.Fprintf(w, `<SessionInfo><SID>0000000000000000</SID><Challenge>%s</Challenge></SessionInfo>`, challenge)
			return
		}

		require.NoError(t, r.ParseForm())
		*logins++
		got := r.PostForm.Get("response")
		if got != challengeResponse(challenge, password) {
			fmt.Fprint(w, `<SessionInfo><SID>0000000000000000</SID></SessionInfo>`)
			return
		}
		fmt.Fprintf(w, `<SessionInfo><SID>%s</SID></SessionInfo>`, sid)
	}))
}

func TestSessionAuthenticator_Login(t *testing.T) {
	logins := 0
	server := newLoginServer(t, "1234567z", "äbc", "9c977765016899f8", &logins)
	defer server.Close()

	auth := NewSessionAuthenticator(server.URL, "admin", "äbc")

	sid, err := auth.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9c977765016899f8", sid)
	assert.Equal(t, 1, logins)

	// Cached session, no second login.
	sid2, err := auth.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sid, sid2)
	assert.Equal(t, 1, logins)
}

func TestSessionAuthenticator_Invalidate(t *testing.T) {
	logins := 0
	server := newLoginServer(t, "1234567z", "äbc", "9c977765016899f8", &logins)
	defer server.Close()

	auth := NewSessionAuthenticator(server.URL, "admin", "äbc")

	_, err := auth.Session(context.Background())
	require.NoError(t, err)

	auth.Invalidate()
	_, err = auth.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, logins)
}

func TestSessionAuthenticator_RejectedCredentials(t *testing.T) {
	logins := 0
	server := newLoginServer(t, "1234567z", "right", "9c977765016899f8", &logins)
	defer server.Close()

	auth := NewSessionAuthenticator(server.URL, "admin", "wrong")

	_, err := auth.Session(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "rejected")
}

func TestSessionAuthenticator_MissingChallenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<SessionInfo><SID>0000000000000000</SID></SessionInfo>`)
	}))
	defer server.Close()

	auth := NewSessionAuthenticator(server.URL, "admin", "pw")

	_, err := auth.Session(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestSessionAuthenticator_TransportError(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close() // connection refused from here on

	auth := NewSessionAuthenticator(server.URL, "admin", "pw")

	_, err := auth.Session(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestSessionAuthenticator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	auth := NewSessionAuthenticator(server.URL, "admin", "pw")

	_, err := auth.Session(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}
