package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"social_moderation/internal/domain/post/model"
	"social_moderation/internal/pkg/remote"
	"social_moderation/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache 以 JSON 序列化模拟 redis 行为
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

const allPostsBody = `{"data":{"getAllPosts":[
 {"id":"p1","caption":"first","createdAt":"2024-01-01T00:00:00Z","status":"approved",
  "user":{"id":"u1","username":"ann","role":"user"},
  "media":[{"id":"m1","url":"https://cdn/a.jpg","type":"image","compressed":true}],
  "comments":[{"id":"c1","content":"https://cdn/a.wav","type":"audio","createdAt":"2024-01-01T01:00:00Z"}],
  "likes":3},
 {"id":"p2","caption":"second","createdAt":"not a date"}
]}}`

func TestPostRepository_ListUsesSnapshot(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(allPostsBody))
	}))
	defer srv.Close()

	repo := NewPostRepository(remote.NewClient(srv.URL, time.Second, nil, nil), newMemoryCache(), time.Minute, nil)
	ctx := context.Background()

	posts, err := repo.List(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	p1 := posts[0]
	assert.Equal(t, model.StatusApproved, p1.Status)
	assert.Equal(t, "ann", p1.Author.Username)
	require.Len(t, p1.Media, 1)
	assert.True(t, p1.Media[0].Compressed)
	require.Len(t, p1.Comments, 1)
	require.NotNil(t, p1.Comments[0].ExpiresAt)
	require.NotNil(t, p1.Engagement)
	assert.Equal(t, 3, p1.Engagement.Likes)
	assert.Equal(t, 1, p1.Engagement.Comments)

	p2 := posts[1]
	assert.True(t, p2.CreatedAt.IsZero())
	assert.Equal(t, model.StatusPending, p2.Status)
	assert.Nil(t, p2.Engagement)

	_, err = repo.List(ctx, "tok")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	repo.Invalidate(ctx)
	_, err = repo.List(ctx, "tok")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMediaTypeFromName(t *testing.T) {
	assert.Equal(t, model.MediaVideo, MediaTypeFromName("clip.MP4"))
	assert.Equal(t, model.MediaAudio, MediaTypeFromName("https://cdn/v.wav?x=1"))
	assert.Equal(t, model.MediaImage, MediaTypeFromName("photo.jpeg"))
}
