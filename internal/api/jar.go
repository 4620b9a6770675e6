package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

const cookieFileName = "cookies.json"

// persistentJar keeps the service's session cookie across process runs. The
// credential never leaves this file: it is written under the data directory
// with owner-only permissions and attached to requests by net/http.
type persistentJar struct {
	mu    sync.Mutex
	inner http.CookieJar
	path  string
}

func newPersistentJar(dataDir string) (*persistentJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &persistentJar{inner: inner, path: filepath.Join(dataDir, cookieFileName)}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

type savedCookies struct {
	URL     string         `json:"url"`
	Cookies []*http.Cookie `json:"cookies"`
}

func (j *persistentJar) load() error {
	b, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cookies: %w", err)
	}
	var saved savedCookies
	if err := json.Unmarshal(b, &saved); err != nil {
		// A corrupt cookie file only means the user signs in again.
		slog.Warn("stored cookies unreadable, discarding", "error", err)
		return os.Remove(j.path)
	}
	u, err := url.Parse(saved.URL)
	if err != nil {
		return os.Remove(j.path)
	}
	j.inner.SetCookies(u, saved.Cookies)
	return nil
}

func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	j.persist(u)
}

func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// persist is called with the mutex held.
func (j *persistentJar) persist(u *url.URL) {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		slog.Warn("cookie dir", "error", err)
		return
	}
	origin := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
	saved := savedCookies{URL: origin.String(), Cookies: j.inner.Cookies(origin)}
	b, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		slog.Warn("marshal cookies", "error", err)
		return
	}
	if err := os.WriteFile(j.path, b, 0o600); err != nil {
		slog.Warn("write cookies", "error", err)
	}
}
