// internal/infra/hortpro/cookies.go
package hortpro

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// Cookies are persisted as a flat name -> value JSON map, scoped to the
// portal host.

func (c *Client) loadCookies() error {
	data, err := os.ReadFile(c.cookiePath)
	if err != nil {
		return err
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse cookie file %s: %w", c.cookiePath, err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for name, value := range stored {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)
	c.log.WithField("count", len(cookies)).Debug("Loaded session cookies from file")
	return nil
}

func (c *Client) saveCookies() error {
	stored := make(map[string]string)
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		stored[cookie.Name] = cookie.Value
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	if err := os.WriteFile(c.cookiePath, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file %s: %w", c.cookiePath, err)
	}
	return nil
}

func (c *Client) hasSessionCookie() bool {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == sessionCookie {
			return true
		}
	}
	return false
}
