// internal/infra/hortpro/client.go
package hortpro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"time"

	"hort_notification_bot/internal/domain/presence"

	"github.com/sirupsen/logrus"
)

const (
	// sessionCookie is the cookie the portal sets on a successful login.
	// A login response without it is treated as a failure.
	sessionCookie = "sid-hep"

	requestTimeout = 15 * time.Second

	// presenceTimeLayout is the timestamp format the portal uses in
	// presence rows, without a zone offset. Times are local.
	presenceTimeLayout = "2006-01-02T15:04:05"
)

var (
	ErrLoginFailed      = errors.New("portal login failed")
	ErrMalformedPayload = errors.New("malformed portal response")
	ErrNoChildren       = errors.New("no children found on portal account")
)

// Client is a session-authenticated client for the HortPro parent portal.
// Session cookies are persisted to cookiePath and reused across restarts.
// All failures are non-fatal at this layer: they are logged and returned,
// and recovery (e.g. a forced re-login) is the caller's responsibility.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	email      string
	password   string
	cookiePath string
	log        *logrus.Entry
}

func NewClient(baseURL, email, password, cookiePath string, log *logrus.Entry) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid portal base URL %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		httpClient: &http.Client{Jar: jar, Timeout: requestTimeout},
		baseURL:    base,
		email:      email,
		password:   password,
		cookiePath: cookiePath,
		log:        log,
	}, nil
}

// EnsureSession loads persisted cookies if present and probes their
// validity with a lightweight authenticated request. If cookies are
// absent, unreadable or rejected by the portal, a fresh login is performed.
func (c *Client) EnsureSession(ctx context.Context) error {
	if err := c.loadCookies(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.WithError(err).Warn("Could not load stored session cookies")
		}
		return c.Login(ctx)
	}

	if c.sessionValid(ctx) {
		c.log.Debug("Stored session cookies are still valid")
		return nil
	}

	c.log.Warn("Stored session cookies are invalid or expired. Performing a new login.")
	return c.Login(ctx)
}

// Login submits the configured credentials. Success requires a 2xx status
// and the portal's session cookie in the response; the cookie set is then
// persisted for reuse across restarts.
func (c *Client) Login(ctx context.Context) error {
	c.log.Info("Attempting to log in to HortPro")

	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("encode login payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/user/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrLoginFailed, resp.StatusCode)
	}

	if !c.hasSessionCookie() {
		return fmt.Errorf("%w: %q cookie not found in response", ErrLoginFailed, sessionCookie)
	}

	if err := c.saveCookies(); err != nil {
		// Non-fatal: the in-memory session works, only reuse after a
		// restart is lost.
		c.log.WithError(err).Error("Could not persist session cookies")
	}
	c.log.Info("Login successful and session cookies saved")
	return nil
}

// kidID accepts both string and numeric child ids; the portal is not
// consistent about which it sends.
type kidID string

func (k *kidID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = kidID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*k = kidID(n.String())
	return nil
}

// KidID fetches the child list and returns the first child's id.
func (c *Client) KidID(ctx context.Context) (string, error) {
	var kids []struct {
		ID kidID `json:"id"`
	}
	if err := c.getJSON(ctx, "/kids", &kids); err != nil {
		return "", err
	}
	if len(kids) == 0 {
		return "", ErrNoChildren
	}
	c.log.WithField("kid_id", string(kids[0].ID)).Debug("Resolved child id")
	return string(kids[0].ID), nil
}

// PresenceRow is a single presence entry as returned by the portal.
type PresenceRow struct {
	DateStart string  `json:"date_start"`
	DateEnd   *string `json:"date_end"`
}

// Presences fetches one page of presence rows for the child.
func (c *Client) Presences(ctx context.Context, kidID string, start, limit int) ([]PresenceRow, error) {
	path := "/kids/" + url.PathEscape(kidID) + "/presences?start=" + strconv.Itoa(start) + "&limit=" + strconv.Itoa(limit)
	var data struct {
		Rows []PresenceRow `json:"rows"`
	}
	if err := c.getJSON(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.Rows, nil
}

// TodayRecord fetches the most recent presence rows and returns the record
// whose start date falls on now's calendar day. First match wins; nil means
// the portal has no row for today yet.
func (c *Client) TodayRecord(ctx context.Context, kidID string, now time.Time) (*presence.Record, error) {
	rows, err := c.Presences(ctx, kidID, 0, 5)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		start, err := time.ParseInLocation(presenceTimeLayout, row.DateStart, now.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: bad date_start %q: %v", ErrMalformedPayload, row.DateStart, err)
		}
		if !presence.SameDay(start, now) {
			continue
		}

		rec := &presence.Record{DateStart: &start}
		if row.DateEnd != nil && *row.DateEnd != "" {
			end, err := time.ParseInLocation(presenceTimeLayout, *row.DateEnd, now.Location())
			if err != nil {
				return nil, fmt.Errorf("%w: bad date_end %q: %v", ErrMalformedPayload, *row.DateEnd, err)
			}
			rec.DateEnd = &end
		}
		return rec, nil
	}
	return nil, nil
}

// DropSession discards the persisted cookies and resets the in-memory jar,
// forcing the next EnsureSession to log in from scratch.
func (c *Client) DropSession() {
	if err := os.Remove(c.cookiePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.WithError(err).Error("Could not remove stored session cookies")
	}
	if jar, err := cookiejar.New(nil); err == nil {
		c.httpClient.Jar = jar
	}
	c.log.Info("Session credentials discarded")
}

func (c *Client) sessionValid(ctx context.Context) bool {
	req, err := c.newRequest(ctx, http.MethodGet, "/kids", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// getJSON performs an authenticated GET and decodes the portal's standard
// `{"success": bool, "data": ...}` envelope into out. A missing or false
// success flag is a malformed payload.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("portal request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("portal request %s: unexpected status %d", path, resp.StatusCode)
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if envelope.Success == nil || !*envelope.Success {
		return fmt.Errorf("%w: success not confirmed", ErrMalformedPayload)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("%w: no data", ErrMalformedPayload)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build portal request: %w", err)
	}
	// Browser-like headers; the portal rejects requests that look like
	// scripted clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:113.0) Gecko/20100101 Firefox/113.0")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Origin", c.baseURL.Scheme+"://"+c.baseURL.Host)
	req.Header.Set("Referer", c.baseURL.Scheme+"://"+c.baseURL.Host+"/login")
	return req, nil
}
