package core

import (
	"encoding/json"
	"net/http"
	"os"
)

// Cookie is the wire shape an external auth flow persists: an array of these
// makes up a cookie jar file.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
	Secure bool   `json:"secure"`
}

// ImportCookies installs session cookies into the shared jar. Every
// subsequent fetch through this client rides the authenticated session; the
// fetch path itself stays agnostic to whether a session is present.
func (c *Client) ImportCookies(cookies []Cookie) {
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		domain := ck.Domain
		if domain == "" {
			domain = c.BaseUrl.Hostname()
		}
		path := ck.Path
		if path == "" {
			path = "/"
		}
		httpCookies = append(httpCookies, &http.Cookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: domain,
			Path:   path,
			Secure: ck.Secure,
		})
	}
	c.Http.GetClient().Jar.SetCookies(c.BaseUrl, httpCookies)
}

// ExportCookies reads the jar back out in the persistable shape. The jar only
// exposes name/value pairs for a url, so domain/path are filled from the base
// url.
func (c *Client) ExportCookies() []Cookie {
	var out []Cookie
	for _, ck := range c.Http.GetClient().Jar.Cookies(c.BaseUrl) {
		out = append(out, Cookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: c.BaseUrl.Hostname(),
			Path:   "/",
			Secure: ck.Secure,
		})
	}
	return out
}

// LoadCookieFile reads a JSON cookie jar persisted by an external auth flow.
func LoadCookieFile(path string) ([]Cookie, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cookies []Cookie
	err = json.Unmarshal(contents, &cookies)
	if err != nil {
		return nil, err
	}
	return cookies, nil
}

// SaveCookieFile writes the jar back out for the next run.
func SaveCookieFile(path string, cookies []Cookie) error {
	contents, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0600)
}
