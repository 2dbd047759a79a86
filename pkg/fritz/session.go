package fritz

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const loginPath = "/login_sid.lua"

// sessionInfo mirrors the XML body returned by the login endpoint.
type sessionInfo struct {
	SID       string `xml:"SID"`
	Challenge string `xml:"Challenge"`
}

// SessionAuthenticator obtains and caches a router session id using the
// challenge-response login scheme. It owns the session exclusively;
// callers get the id through Session and force a fresh login through
// Invalidate. Not safe for concurrent use; checks run one at a time.
type SessionAuthenticator struct {
	baseURL  string
	username string
	password string
	client   *http.Client

	sid string
}

// NewSessionAuthenticator creates an authenticator for the router at
// baseURL (scheme and host, no trailing slash).
func NewSessionAuthenticator(baseURL, username, password string) *SessionAuthenticator {
	return &SessionAuthenticator{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Session returns the current session id, logging in first if none is
// held.
func (a *SessionAuthenticator) Session(ctx context.Context) (string, error) {
	if a.sid != "" {
		return a.sid, nil
	}
	sid, err := a.login(ctx)
	if err != nil {
		return "", err
	}
	a.sid = sid
	return sid, nil
}

// Invalidate discards the held session so the next Session call logs in
// again. Called after the router rejects the id downstream.
func (a *SessionAuthenticator) Invalidate() {
	a.sid = ""
}

func (a *SessionAuthenticator) login(ctx context.Context) (string, error) {
	info, err := a.fetchSessionInfo(ctx, nil)
	if err != nil {
		return "", &AuthError{Reason: "get challenge", Err: err}
	}
	if info.Challenge == "" {
		return "", &AuthError{Reason: "no challenge in response"}
	}

	form := url.Values{
		"username": {a.username},
		"response": {challengeResponse(info.Challenge, a.password)},
	}
	info, err = a.fetchSessionInfo(ctx, form)
	if err != nil {
		return "", &AuthError{Reason: "submit response", Err: err}
	}
	if rejectedSID(info.SID) {
		return "", &AuthError{Reason: "credentials rejected"}
	}
	return info.SID, nil
}

// fetchSessionInfo hits the login endpoint, as a GET when form is nil
// and a form POST otherwise, and decodes the session XML.
func (a *SessionAuthenticator) fetchSessionInfo(ctx context.Context, form url.Values) (*sessionInfo, error) {
	var req *http.Request
	var err error
	if form == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+loginPath, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+loginPath, strings.NewReader(form.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call login endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	var info sessionInfo
	if err := xml.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &info, nil
}

// challengeResponse computes the login response for a challenge:
// challenge + "-" + hex(md5(utf16le(challenge + "-" + password))).
// Code points above 0xff are replaced with '.' before encoding, per
// the router's login scheme.
func challengeResponse(challenge, password string) string {
	h := md5.New()
	for _, r := range challenge + "-" + password {
		if r > 0xff {
			r = '.'
		}
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(r))
		h.Write(buf[:])
	}
	return challenge + "-" + hex.EncodeToString(h.Sum(nil))
}

// rejectedSID reports whether sid is the fixed-width all-zero string
// the router returns for a failed login.
func rejectedSID(sid string) bool {
	if sid == "" {
		return true
	}
	return strings.Trim(sid, "0") == ""
}
