package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nabha/offline"
)

type request struct {
	method  string
	path    string
	query   string
	session string
	body    string
}

// apiMock answers with status for every request and records what it received.
type apiMock struct {
	status   int
	response string
	requests []request
}

func (api *apiMock) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := request{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)}
	if ck, err := r.Cookie(DefaultSessionCookie); err == nil {
		req.session = ck.Value
	}
	api.requests = append(api.requests, req)

	if strings.HasPrefix(r.URL.Path, "/api/users/login") && api.status == http.StatusOK {
		http.SetCookie(w, &http.Cookie{Name: DefaultSessionCookie, Value: "tok-1", Path: "/", HttpOnly: true})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(api.status)
	_, _ = w.Write([]byte(api.response))
}

func setup(t *testing.T, status int, response string) (*Client, *apiMock) {
	api := &apiMock{status: status, response: response}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/", time.Second)
	require.NoError(t, err)
	return c, api
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "valid", baseURL: "http://localhost:8000/api"},
		{name: "no scheme", baseURL: "localhost/api", wantErr: true},
		{name: "garbage", baseURL: "http://[::1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.baseURL, time.Second)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestClient_PostProgress(t *testing.T) {
	rec := offline.ProgressRecord{ID: "s1:c1", StudentID: "s1", ContentItemID: "c1", ProgressPercentage: 50,
		LastAccessedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "created", status: http.StatusCreated},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: true},
		{name: "bad request", status: http.StatusBadRequest, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, api := setup(t, tt.status, `{"error":"nope"}`)
			c.SetSession("tok-0")

			err := c.PostProgress(context.Background(), rec)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, offline.ErrRemoteDeliveryFailed), "got %v", err)
				assert.Contains(t, err.Error(), "nope")
			} else {
				assert.NoError(t, err)
			}

			require.Len(t, api.requests, 1)
			req := api.requests[0]
			assert.Equal(t, http.MethodPost, req.method)
			assert.Equal(t, "/api/progress", req.path)
			assert.Equal(t, "tok-0", req.session)
			assert.JSONEq(t, `{"id":"s1:c1","student_id":"s1","content_item_id":"c1","progress_percentage":50,
				"time_spent":0,"last_accessed_at":"2024-03-01T10:00:00Z"}`, req.body)
		})
	}
}

func TestClient_transportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(srv.URL+"/api", time.Second)
	require.NoError(t, err)
	srv.Close()

	err = c.SubmitAssignment(context.Background(), offline.Submission{AssignmentID: "a1"})
	assert.True(t, errors.Is(err, offline.ErrRemoteDeliveryFailed), "got %v", err)
	assert.True(t, errors.Is(c.Ping(context.Background()), offline.ErrRemoteDeliveryFailed))
}

func TestClient_cancelledContext(t *testing.T) {
	c, api := setup(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.PostProgress(ctx, offline.ProgressRecord{StudentID: "s1", ContentItemID: "c1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, offline.ErrRemoteDeliveryFailed), "got %v", err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Empty(t, api.requests)
}

func TestClient_SubmitAssignment(t *testing.T) {
	c, api := setup(t, http.StatusCreated, `{}`)
	sub := offline.Submission{AssignmentID: "a1", StudentID: "s1", Answers: map[string]string{"q1": "b"}}

	require.NoError(t, c.SubmitAssignment(context.Background(), sub))
	require.Len(t, api.requests, 1)
	assert.Equal(t, "/api/assignments/submit", api.requests[0].path)

	var got offline.Submission
	require.NoError(t, json.Unmarshal([]byte(api.requests[0].body), &got))
	assert.Equal(t, sub, got)
}

func TestClient_Login(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c, api := setup(t, http.StatusOK, `{"token":"tok-1","user":{"id":"u1"}}`)

		token, err := c.Login(context.Background(), "learner", "Secret#123")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
		assert.Equal(t, "tok-1", c.Session())
		assert.JSONEq(t, `{"username":"learner","password":"Secret#123"}`, api.requests[0].body)

		// the jar sends the session on the next request
		require.NoError(t, c.Ping(context.Background()))
		assert.Equal(t, "tok-1", api.requests[1].session)
	})

	t.Run("rejected", func(t *testing.T) {
		c, _ := setup(t, http.StatusUnauthorized, `{"error":"invalid credentials"}`)
		_, err := c.Login(context.Background(), "learner", "wrong")
		assert.Error(t, err)
		assert.Empty(t, c.Session())
	})
}

func TestClient_LoginStudent(t *testing.T) {
	c, api := setup(t, http.StatusOK, `{"token":"tok-1","user":{"id":"s1"}}`)

	token, err := c.LoginStudent(context.Background(), "sch-1", "6A", "12", "0420")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "tok-1", c.Session())
	require.Len(t, api.requests, 1)
	assert.Equal(t, "/api/users/login/student", api.requests[0].path)
	assert.JSONEq(t, `{"school_id":"sch-1","class_name":"6A","roll_number":"12","pin":"0420"}`, api.requests[0].body)

	c, _ = setup(t, http.StatusBadRequest, `{"error":"authentication failed"}`)
	_, err = c.LoginStudent(context.Background(), "sch-1", "6A", "12", "0000")
	assert.True(t, errors.Is(err, offline.ErrRemoteDeliveryFailed))
	assert.Empty(t, c.Session())
}

func TestAccount_DisplayName(t *testing.T) {
	assert.Equal(t, "asha", Account{Name: "Asha", Username: "asha"}.DisplayName())
	assert.Equal(t, "Asha", Account{Name: "Asha"}.DisplayName())
}

func TestClient_FetchContent(t *testing.T) {
	c, api := setup(t, http.StatusOK, `[
		{"id":"c1","category_id":"math","type":"video","title":{"en":"Fractions","hi":"भिन्न"},"estimated_duration":15,"has_audio":true},
		{"id":"c2","category_id":"math","type":"quiz","title":{"en":"Quiz"}}
	]`)

	items, err := c.FetchContent(context.Background(), true, "math")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "भिन्न", items[0].Title["hi"])
	assert.True(t, items[0].HasAudio)
	assert.Equal(t, 15, items[0].EstimatedDuration)

	assert.Equal(t, "/api/content", api.requests[0].path)
	assert.Contains(t, api.requests[0].query, "offline=true")
	assert.Contains(t, api.requests[0].query, "category=math")
}

func TestClient_Me(t *testing.T) {
	c, api := setup(t, http.StatusOK, `{"id":"s1","name":"Asha","username":"asha","roles":["student:"]}`)
	c.SetSession("tok-9")

	acc, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Account{ID: "s1", Name: "Asha", Username: "asha", Roles: []string{"student:"}}, acc)
	require.Len(t, api.requests, 1)
	assert.Equal(t, "/api/users/me", api.requests[0].path)
	assert.Equal(t, "tok-9", api.requests[0].session)

	c, _ = setup(t, http.StatusUnauthorized, `{"error":"unauthorized"}`)
	_, err = c.Me(context.Background())
	assert.True(t, errors.Is(err, offline.ErrRemoteDeliveryFailed))
}
