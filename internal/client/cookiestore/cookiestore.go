// ABOUTME: Session cookie jar that can outlive a single process
// ABOUTME: Wraps net/http/cookiejar and mirrors the backend's cookies to the XDG config dir

package cookiestore

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const fileName = "session.json"

// Jar is an http.CookieJar for one backend. When configDir is set, every
// SetCookies call rewrites the saved copy so the next run starts signed in.
type Jar struct {
	mu        sync.RWMutex
	inner     *cookiejar.Jar
	configDir string
	origin    *url.URL
	// cookiejar only hands back name and value, so attributes are tracked here
	saved map[string]savedCookie
	now   func() time.Time
}

type savedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (c savedCookie) key() string {
	return c.Name + ";" + c.Path
}

func (c savedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c savedCookie) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

type sessionData struct {
	// Keyed by backend origin so switching --api-url never leaks a cookie.
	Sessions map[string][]savedCookie `json:"sessions"`
}

func newInner() *cookiejar.Jar {
	// cookiejar.New never returns a non-nil error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// NewMemory returns a jar that never touches disk
func NewMemory() *Jar {
	return &Jar{inner: newInner(), saved: map[string]savedCookie{}, now: time.Now}
}

// Open returns a jar for the backend at baseURL, preloaded with any cookies
// saved by a previous run. An empty configDir behaves like NewMemory.
func Open(configDir, baseURL string) (*Jar, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	j := &Jar{
		inner:     newInner(),
		configDir: configDir,
		origin:    &url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: "/"},
		saved:     map[string]savedCookie{},
		now:       time.Now,
	}
	if configDir == "" {
		return j, nil
	}

	data, err := j.read()
	if err != nil {
		return nil, err
	}

	now := j.now()
	var cookies []*http.Cookie
	for _, c := range data.Sessions[j.origin.String()] {
		if c.expired(now) {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		j.saved[c.key()] = c
		cookies = append(cookies, c.cookie())
	}
	if len(cookies) > 0 {
		j.inner.SetCookies(j.origin, cookies)
	}
	return j, nil
}

// Cookies implements http.CookieJar
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

// SetCookies implements http.CookieJar
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)
	j.track(u, cookies)
	// Persistence is best effort; a read-only home dir still gets a working session.
	_ = j.persistLocked()
}

// Reset drops every cookie, in memory and on disk
func (j *Jar) Reset() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner = newInner()
	j.saved = map[string]savedCookie{}
	return j.persistLocked()
}

// track mirrors cookiejar's expiry rules for the cookies a response set
func (j *Jar) track(u *url.URL, cookies []*http.Cookie) {
	now := j.now()
	for _, c := range cookies {
		sc := savedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if sc.Path == "" || sc.Path[0] != '/' {
			sc.Path = defaultPath(u.Path)
		}
		switch {
		case c.MaxAge < 0:
			sc.Expires = now
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if sc.expired(now) {
			delete(j.saved, sc.key())
			continue
		}
		j.saved[sc.key()] = sc
	}
}

// defaultPath is the RFC 6265 default-path of a request path
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	dir := path.Dir(p)
	if dir == "." {
		return "/"
	}
	return dir
}

func (j *Jar) file() string {
	return filepath.Join(j.configDir, fileName)
}

func (j *Jar) read() (*sessionData, error) {
	data := &sessionData{Sessions: map[string][]savedCookie{}}

	raw, err := os.ReadFile(j.file())
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, data); err != nil || data.Sessions == nil {
		// Corrupt file, start fresh
		return &sessionData{Sessions: map[string][]savedCookie{}}, nil
	}
	return data, nil
}

func (j *Jar) persistLocked() error {
	if j.configDir == "" || j.origin == nil {
		return nil
	}

	data, err := j.read()
	if err != nil {
		return err
	}

	now := j.now()
	var saved []savedCookie
	for _, c := range j.saved {
		if !c.expired(now) {
			saved = append(saved, c)
		}
	}
	if len(saved) == 0 {
		delete(data.Sessions, j.origin.String())
	} else {
		sort.Slice(saved, func(a, b int) bool { return saved[a].key() < saved[b].key() })
		data.Sessions[j.origin.String()] = saved
	}

	if err := os.MkdirAll(j.configDir, 0700); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.file(), raw, 0600)
}
