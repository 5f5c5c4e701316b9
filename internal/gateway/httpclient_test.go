package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/userdesk/internal/user"
)

const usersJSON = `[
	{
		"id": 1,
		"name": "Leanne Graham",
		"username": "Bret",
		"email": "Sincere@april.biz",
		"address": {"street": "Kulas Light", "suite": "Apt. 556", "city": "Gwenborough"},
		"phone": "1-770-736-8031 x56442",
		"website": "hildegard.org",
		"company": {"name": "Romaguera-Crona", "catchPhrase": "Multi-layered"}
	},
	{
		"id": 2,
		"name": "Ervin Howell",
		"username": "Antonette",
		"email": "Shanna@melissa.tv",
		"address": {"street": "Victor Plains", "city": "Wisokyburghh"},
		"phone": "010-692-6593 x09125",
		"website": "anastasia.net",
		"company": {"name": "Deckow-Crist"}
	}
]`

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...ClientOption) *HTTPClient {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewHTTPClient(append([]ClientOption{WithBaseURL(ts.URL + "/")}, opts...)...)
}

func TestListUsers_HappyPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err, "every call carries a uuid request id")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(usersJSON))
	})

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, 1, users[0].ID)
	assert.Equal(t, "Bret", users[0].Username)
	assert.Equal(t, "Gwenborough", users[0].Address.City)
	assert.Equal(t, "Romaguera-Crona", users[0].Company.Name)
	assert.Equal(t, "Wisokyburghh", users[1].Address.City)
}

func TestListUsers_NullBodyIsEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestListUsers_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	users, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.Nil(t, users)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list users", se.Op)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "upstream down", se.Body)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestListUsers_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"`))
	})

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway: list users: decode response")
}

func TestListUsers_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client := NewHTTPClient(WithBaseURL(url))
	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway: list users")
}

func TestCreateUser_SendsDraftWithoutID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasID := body["id"]
		assert.False(t, hasID, "draft id must not be sent")
		assert.Equal(t, "Nina", body["name"])
		assert.Equal(t, map[string]any{"street": "1 Main", "city": "Oslo"}, body["address"])
		assert.Equal(t, map[string]any{"name": "Acme"}, body["company"])

		// jsonplaceholder always answers 201 with id 11.
		body["id"] = 11
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	})

	draft := user.Record{
		ID:       5,
		Name:     "Nina",
		Username: "nina",
		Email:    "nina@example.com",
		Address:  user.Address{Street: "1 Main", City: "Oslo"},
		Phone:    "555-0100",
		Company:  user.Company{Name: "Acme"},
	}
	got, err := client.CreateUser(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, 11, got.ID)
	assert.Equal(t, "Nina", got.Name)
	assert.Equal(t, "Oslo", got.Address.City)
}

func TestCreateUser_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateUser(context.Background(), user.Record{Name: "x"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "create user", se.Op)
	assert.Equal(t, "gateway: create user: HTTP 500", err.Error())
}

func TestUpdateUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/3", r.URL.Path)
		var body user.Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 3, body.ID)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	})

	got, err := client.UpdateUser(context.Background(), user.Record{ID: 3, Name: "Clem"})
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)
	assert.Equal(t, "Clem", got.Name)
}

func TestDeleteUser(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/users/7", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, client.DeleteUser(context.Background(), 7))
	assert.Equal(t, int32(1), calls.Load(), "exactly one attempt")
}

func TestDeleteUser_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})

	err := client.DeleteUser(context.Background(), 404)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.ListUsers(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(30*time.Millisecond))
	defer close(release)

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
}

func TestWithRateLimit_CanceledWaitFails(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}, WithRateLimit(0.001))

	// The first call spends the single token.
	_, err := client.ListUsers(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.ListUsers(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "the paced call never reached the server")
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	c := NewHTTPClient()
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 30*time.Second, c.http.Timeout)
	assert.Nil(t, c.limiter)

	c = NewHTTPClient(WithRateLimit(-1), WithLogger(nil))
	assert.Nil(t, c.limiter)
	assert.NotNil(t, c.log)
}
