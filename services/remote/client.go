package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/nabha/offline"
)

// DefaultSessionCookie is the cookie the API keeps its session token in.
const DefaultSessionCookie = "session"

// Client talks to the Nabha API on behalf of the offline agent.
// Requests carry the session cookie held by its jar.
type Client struct {
	baseURL *url.URL
	cookie  string
	jar     http.CookieJar
	rest    *rest.Client
}

var _ offline.Remote = (*Client)(nil) // interface compliance check

// New returns a Client for the API rooted at baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, timeout time.Duration, sessionCookie ...string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing API base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid API base URL %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}

	cookie := DefaultSessionCookie
	if len(sessionCookie) > 0 && sessionCookie[0] != "" {
		cookie = sessionCookie[0]
	}
	return &Client{
		baseURL: u,
		cookie:  cookie,
		jar:     jar,
		rest:    &rest.Client{HTTPClient: &http.Client{Jar: jar, Timeout: timeout}},
	}, nil
}

// SetSession restores a session token obtained by an earlier Login.
func (c *Client) SetSession(token string) {
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: c.cookie, Value: token, Path: "/"}})
}

// Session returns the current session token, if any.
func (c *Client) Session() string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == c.cookie {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) send(ctx context.Context, method rest.Method, path string, query map[string]string, body interface{}) (*rest.Response, error) {
	req := rest.Request{
		Method:      method,
		BaseURL:     c.baseURL.String() + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		req.Body = data
		req.Headers["Content-Type"] = "application/json"
	}

	op := string(method) + " " + path
	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return nil, offline.RemoteDeliveryFailed(op, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res, offline.RemoteDeliveryFailed(op, errors.Errorf("%d %s: %s",
			res.StatusCode, http.StatusText(res.StatusCode), strings.TrimSpace(res.Body)))
	}
	return res, nil
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login opens a session and returns its token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.login(ctx, "/users/login", map[string]string{"username": username, "password": password})
}

// LoginStudent opens a student session with class, roll number and PIN.
func (c *Client) LoginStudent(ctx context.Context, schoolID, className, rollNumber, pin string) (string, error) {
	return c.login(ctx, "/users/login/student", map[string]string{
		"school_id":   schoolID,
		"class_name":  className,
		"roll_number": rollNumber,
		"pin":         pin,
	})
}

func (c *Client) login(ctx context.Context, path string, creds map[string]string) (string, error) {
	res, err := c.send(ctx, rest.Post, path, nil, creds)
	if err != nil {
		return "", err
	}
	var lr loginResponse
	if err := json.Unmarshal([]byte(res.Body), &lr); err != nil {
		return "", errors.Wrap(err, "decoding login response")
	}
	if lr.Token == "" {
		return "", errors.New("login response carries no token")
	}
	c.SetSession(lr.Token)
	return lr.Token, nil
}

// Account is the user a session belongs to.
type Account struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`

	// set for students who log in with a PIN
	SchoolID   string `json:"school_id"`
	ClassName  string `json:"class_name"`
	RollNumber string `json:"roll_number"`
}

// DisplayName is the username, or the name of accounts that have none.
func (a Account) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return a.Name
}

// Me returns the account of the current session.
func (c *Client) Me(ctx context.Context) (Account, error) {
	res, err := c.send(ctx, rest.Get, "/users/me", nil, nil)
	if err != nil {
		return Account{}, err
	}
	var acc Account
	if err := json.Unmarshal([]byte(res.Body), &acc); err != nil {
		return Account{}, errors.Wrap(err, "decoding account")
	}
	return acc, nil
}

func (c *Client) PostProgress(ctx context.Context, rec offline.ProgressRecord) error {
	_, err := c.send(ctx, rest.Post, "/progress", nil, rec)
	return err
}

func (c *Client) SubmitAssignment(ctx context.Context, sub offline.Submission) error {
	_, err := c.send(ctx, rest.Post, "/assignments/submit", nil, sub)
	return err
}

// FetchContent lists published content; offlineOnly keeps only items available offline.
func (c *Client) FetchContent(ctx context.Context, offlineOnly bool, category string) ([]offline.ContentRecord, error) {
	var query map[string]string
	if offlineOnly || category != "" {
		query = make(map[string]string, 2)
	}
	if offlineOnly {
		query["offline"] = strconv.FormatBool(true)
	}
	if category != "" {
		query["category"] = category
	}

	res, err := c.send(ctx, rest.Get, "/content", query, nil)
	if err != nil {
		return nil, err
	}
	var items []offline.ContentRecord
	if err := json.Unmarshal([]byte(res.Body), &items); err != nil {
		return nil, errors.Wrap(err, "decoding content")
	}
	return items, nil
}

// Ping checks that the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.send(ctx, rest.Get, "/health", nil, nil)
	return err
}
