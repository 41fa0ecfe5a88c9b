package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/trace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req gqlRequest, r *http.Request)) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req, r)
	}))
	return NewClient(srv.URL, 2*time.Second, nil, nil), srv.Close
}

func TestClient_Login(t *testing.T) {
	t.Run("Decode token and user", func(t *testing.T) {
		client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
			assert.Contains(t, req.Query, "login(phoneNo: $phoneNo")
			assert.EqualValues(t, 5551234, req.Variables["phoneNo"])
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"data":{"login":{"token":"tok","user":{"id":"u1","username":"ann","phoneNo":5551234,"role":"ADMIN"}}}}`))
		})
		defer closeFn()

		resp, err := client.Login(context.Background(), 5551234, "secret")
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "u1", resp.User.ID)
		assert.Equal(t, "5551234", resp.User.PhoneString())
	})

	t.Run("GraphQL errors become rejections", func(t *testing.T) {
		client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Invalid credentials"}]}`))
		})
		defer closeFn()

		_, err := client.Login(context.Background(), 5551234, "bad")
		require.Error(t, err)
		assert.True(t, IsRejection(err))
		assert.False(t, apperr.IsNetwork(err))
	})
}

func TestClient_NetworkFailures(t *testing.T) {
	t.Run("5xx is a network error", func(t *testing.T) {
		client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer closeFn()

		_, err := client.GetAllPosts(context.Background(), "tok")
		assert.True(t, apperr.IsNetwork(err))
	})

	t.Run("Unreachable endpoint is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := NewClient(url, time.Second, nil, nil)
		_, err := client.GetAllPosts(context.Background(), "tok")
		assert.True(t, apperr.IsNetwork(err))
	})
}

func TestClient_CreatePost(t *testing.T) {
	client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "hello", req.Variables["caption"])
		assert.Len(t, req.Variables["mediaUrls"], 0)
		_, _ = w.Write([]byte(`{"data":{"createPost":{"id":"p1","caption":"hello","createdAt":"2024-01-01T00:00:00Z","status":"pending"}}}`))
	})
	defer closeFn()

	post, err := client.CreatePost(context.Background(), "tok", "u1", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "pending", post.Status)
}

func TestClient_GetNotifications(t *testing.T) {
	client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
		assert.Equal(t, "u1", req.Variables["userId"])
		_, _ = w.Write([]byte(`{"data":{"getNotifications":[{"id":"n1","type":"approval","title":"Approved","message":"ok","seen":false,"createdAt":"2024-01-01T00:00:00Z"}]}}`))
	})
	defer closeFn()

	list, err := client.GetNotifications(context.Background(), "tok", "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n1", list[0].ID)
}

func TestClient_ForwardsTraceID(t *testing.T) {
	client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
		assert.Equal(t, "trace-123", r.Header.Get(trace.Header))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"getAllPosts":[]}}`))
	})
	defer closeFn()

	ctx := trace.WithID(context.Background(), "trace-123")
	posts, err := client.GetAllPosts(ctx, "tok")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestClient_BasicSchemaFallback(t *testing.T) {
	const unknown = `{"errors":[{"message":"Cannot query field \"status\" on type \"Post\"."}]}`

	t.Run("Posts are re-fetched without extended fields and the choice is remembered", func(t *testing.T) {
		var calls, extended int32
		client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			if strings.Contains(req.Query, "status") {
				atomic.AddInt32(&extended, 1)
				_, _ = w.Write([]byte(unknown))
				return
			}
			assert.NotContains(t, req.Query, "comments")
			_, _ = w.Write([]byte(`{"data":{"getAllPosts":[{"id":"p1","caption":"hi","user":{"id":"u1"}}]}}`))
		})
		defer closeFn()

		posts, err := client.GetAllPosts(context.Background(), "tok")
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Empty(t, posts[0].Status)

		_, err = client.GetAllPosts(context.Background(), "tok")
		require.NoError(t, err)
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
		assert.EqualValues(t, 1, atomic.LoadInt32(&extended))
	})

	t.Run("User posts are filtered from the full list when the query is missing", func(t *testing.T) {
		client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
			if strings.Contains(req.Query, "getUserPosts") {
				_, _ = w.Write([]byte(`{"errors":[{"message":"Cannot query field \"getUserPosts\" on type \"Query\"."}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":{"getAllPosts":[{"id":"p1","user":{"id":"u1"}},{"id":"p2","user":{"id":"u2"}},{"id":"p3"}]}}`))
		})
		defer closeFn()

		posts, err := client.GetUserPosts(context.Background(), "tok", "u1")
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "p1", posts[0].ID)
	})

	t.Run("Notifications fall back to the original fields", func(t *testing.T) {
		client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
			if strings.Contains(req.Query, "actionUrl") {
				_, _ = w.Write([]byte(`{"errors":[{"message":"Cannot query field \"type\" on type \"Notification\"."}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":{"getNotifications":[{"id":"n1","message":"ok","seen":true,"createdAt":"2024-01-01T00:00:00Z"}]}}`))
		})
		defer closeFn()

		list, err := client.GetNotifications(context.Background(), "tok", "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Empty(t, list[0].Type)
		assert.True(t, list[0].Seen)
	})

	t.Run("Other GraphQL errors are not retried", func(t *testing.T) {
		var calls int32
		client, closeFn := newTestServer(t, func(w http.ResponseWriter, req gqlRequest, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			_, _ = w.Write([]byte(`{"errors":[{"message":"Unauthorized"}]}`))
		})
		defer closeFn()

		_, err := client.GetAllPosts(context.Background(), "tok")
		assert.True(t, IsRejection(err))
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})
}
