// Package cloud is thin client of the vendor account service:
// login, device manifest with encrypted local credentials, environment history.
// No retries or caching, every call is one HTTP request.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/airlink/log2"
)

const DefaultURL = "https://appapi.cp.dyson.com"

// error bodies longer than this are cut in StatusError
const maxErrorBody = 512

type Client struct {
	HTTP *http.Client
	Log  *log2.Log

	base    string
	country string
	account AccountCredentials
}

// New client with base URL, empty means DefaultURL.
// hc may be nil, then http client with timeout is used.
func New(base string, hc *http.Client, log *log2.Log) *Client {
	if base == "" {
		base = DefaultURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		HTTP: hc,
		Log:  log,
		base: strings.TrimRight(base, "/"),
	}
}

// StatusError is non-2xx response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cloud: url=%s status=%d body=%q", e.URL, e.Code, e.Body)
}

func IsUnauthorized(err error) bool {
	se, ok := errors.Cause(err).(*StatusError)
	return ok && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}

// Login exchanges user credentials for account credentials,
// which are kept for following requests.
func (c *Client) Login(ctx context.Context, user UserCredentials) (AccountCredentials, error) {
	if user.Email == "" || user.Country == "" {
		return AccountCredentials{}, errors.NotValidf("cloud login email and country required")
	}
	body, err := json.Marshal(user)
	if err != nil {
		return AccountCredentials{}, errors.Trace(err)
	}
	u := c.base + "/v1/userregistration/authenticate?country=" + url.QueryEscape(user.Country)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return AccountCredentials{}, errors.Trace(err)
	}
	req.Header.Set("Content-Type", "application/json")
	var account AccountCredentials
	if err = c.doJSON(req, &account); err != nil {
		return AccountCredentials{}, errors.Annotate(err, "cloud login")
	}
	if account.Account == "" {
		return AccountCredentials{}, errors.NotValidf("cloud login response without Account")
	}
	c.account = account
	c.country = user.Country
	c.Log.Debugf("cloud login ok account=%s", account.Account)
	return account, nil
}

// SetAccount skips Login when account credentials were stored earlier.
func (c *Client) SetAccount(account AccountCredentials, country string) {
	c.account = account
	c.country = country
}

func (c *Client) Manifest(ctx context.Context) ([]DeviceManifest, error) {
	var ds []DeviceManifest
	err := c.getJSON(ctx, "/v2/provisioningservice/manifest", &ds)
	return ds, errors.Annotate(err, "cloud manifest")
}

func (c *Client) EnvironmentData(ctx context.Context, serial string) (EnvironmentData, error) {
	var d EnvironmentData
	err := c.getJSON(ctx, fmt.Sprintf("/v1/environment/devices/%s/data?language=%s",
		url.PathEscape(serial), url.QueryEscape(c.country)), &d)
	return d, errors.Annotatef(err, "cloud environment serial=%s", serial)
}

func (c *Client) EnvironmentHelp(ctx context.Context, serial string) (EnvironmentHelp, error) {
	var d EnvironmentHelp
	err := c.getJSON(ctx, fmt.Sprintf("/v1/environment/devices/%s/help?language=%s",
		url.PathEscape(serial), url.QueryEscape(c.country)), &d)
	return d, errors.Annotatef(err, "cloud environment help serial=%s", serial)
}

func (c *Client) DailyHistoryLegacy(ctx context.Context, serial string) ([]EnvironmentDaily, error) {
	var ds []EnvironmentDaily
	err := c.getJSON(ctx, "/v1/messageprocessor/devices/"+url.PathEscape(serial)+"/environmentdailyhistory", &ds)
	return ds, errors.Annotatef(err, "cloud daily history serial=%s", serial)
}

func (c *Client) WeeklyHistoryLegacy(ctx context.Context, serial string) ([]EnvironmentWeekly, error) {
	var ws []EnvironmentWeekly
	err := c.getJSON(ctx, "/v1/messageprocessor/devices/"+url.PathEscape(serial)+"/environmentweeklyhistory", &ws)
	return ws, errors.Annotatef(err, "cloud weekly history serial=%s", serial)
}

// DailyHistory returns response body as is, format is not stable.
func (c *Client) DailyHistory(ctx context.Context, serial string) (string, error) {
	b, err := c.getText(ctx, "/v1/messageprocessor/devices/"+url.PathEscape(serial)+"/environmentdata/daily")
	return string(b), errors.Annotatef(err, "cloud daily serial=%s", serial)
}

func (c *Client) WeeklyHistory(ctx context.Context, serial string) (string, error) {
	b, err := c.getText(ctx, "/v1/messageprocessor/devices/"+url.PathEscape(serial)+"/environmentdata/weekly")
	return string(b), errors.Annotatef(err, "cloud weekly serial=%s", serial)
}

func (c *Client) newGet(ctx context.Context, path string) (*http.Request, error) {
	if c.account.Account == "" {
		return nil, errors.Errorf("cloud request before login path=%s", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	req.SetBasicAuth(c.account.Account, c.account.Password)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := c.newGet(ctx, path)
	if err != nil {
		return err
	}
	return c.doJSON(req, v)
}

func (c *Client) getText(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newGet(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) doJSON(req *http.Request, v interface{}) error {
	b, err := c.do(req)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(b, v); err != nil {
		return errors.Annotatef(err, "url=%s", req.URL.Redacted())
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.Log.Debugf("cloud %s %s", req.Method, req.URL.Redacted())
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotatef(err, "url=%s read body", req.URL.Redacted())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, URL: req.URL.Redacted(), Body: string(b)}
	}
	return b, nil
}
