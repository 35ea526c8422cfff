// Package client implements the byndl dashboard synchronization layer:
// timer-driven pollers for notifications and conversations plus the
// dispatcher that turns a clicked notification into a navigation action.
//
// State handling is replace-on-fetch: every poll swaps the local list
// for the server's snapshot, and every mutation is followed by a
// refetch instead of an optimistic local update. Background failures
// degrade silently and keep the stale data.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Session is the authentication context injected into the client at
// login; the networking layer never reads ambient globals.
type Session struct {
	UserType string // bauherr | handwerker
	UserID   uint
	UserName string
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session Session
	Log     *logrus.Logger
}

func New(baseURL string, session Session) *Client {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Session: session,
		Log:     log,
	}
}

func (c *Client) apiURL(path string) string {
	return c.BaseURL + path
}

// get returns the response for a 2xx GET; the caller owns the body.
func (c *Client) get(path string) (*http.Response, error) {
	res, err := c.HTTP.Get(c.apiURL(path))
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		res.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d", path, res.StatusCode)
	}
	return res, nil
}

func (c *Client) postJSON(path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL(path), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.apiURL(path), nil)
	if err != nil {
		return err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, res.StatusCode)
	}
	return nil
}
