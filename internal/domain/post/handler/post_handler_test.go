package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	commentModel "social_moderation/internal/domain/comment/model"
	"social_moderation/internal/domain/post/model"
	"social_moderation/internal/domain/post/service"
	userModel "social_moderation/internal/domain/user/model"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/config"
	"social_moderation/internal/pkg/session"
	"social_moderation/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) SubmitPost(ctx context.Context, actor session.Identity, input service.SubmitInput) (*model.Post, error) {
	// 读出文件内容便于断言
	contents := make([]string, len(input.Files))
	for i, f := range input.Files {
		raw, _ := io.ReadAll(f.Reader)
		contents[i] = f.Name + ":" + string(raw)
	}
	args := m.Called(actor.User.ID, input.Caption, contents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Approve(ctx context.Context, actor session.Identity, postID string) (*model.Post, error) {
	args := m.Called(actor.User.ID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Reject(ctx context.Context, actor session.Identity, postID, reason string) (*model.Post, error) {
	args := m.Called(actor.User.ID, postID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Feed(ctx context.Context, viewer session.Identity) ([]model.Post, error) {
	args := m.Called(viewer.User.ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostService) UserPosts(ctx context.Context, viewer session.Identity, userID string) ([]model.Post, error) {
	args := m.Called(viewer.User.ID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostService) Submissions(ctx context.Context, actor session.Identity, offset, limit int) ([]model.Submission, int64, error) {
	args := m.Called(actor.User.ID, offset, limit)
	return args.Get(0).([]model.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostService) Pending(ctx context.Context, actor session.Identity, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(actor.User.ID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostService) Stats(ctx context.Context, actor session.Identity) (*model.Stats, error) {
	args := m.Called(actor.User.ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stats), args.Error(1)
}

var testMedia = config.MediaConfig{ThumbnailWidth: 400, FullWidth: 1200, Placeholder: "/static/placeholder.png"}

func setupRouter(svc service.PostService, id session.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), id))
		c.Next()
	})
	h := NewPostHandler(svc, NewPresenter(testMedia))
	r.GET("/posts/feed", h.Feed)
	r.POST("/posts", h.Create)
	r.GET("/posts/submissions", h.Submissions)
	r.PUT("/posts/:id/approve", h.Approve)
	r.PUT("/posts/:id/reject", h.Reject)
	r.GET("/posts/stats", h.Stats)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var member = session.Identity{Authenticated: true, User: userModel.User{ID: "u1", Username: "ann", PhoneNumber: "5551234"}}

func TestPostHandler_Feed(t *testing.T) {
	svc := new(MockPostService)
	post := model.Post{
		ID:      "p1",
		Caption: "hi",
		Author:  member.User,
		Status:  model.StatusApproved,
		Media:   []model.Media{{URL: "https://cdn.example.com/a.jpg", Compressed: true}, {}},
	}
	svc.On("Feed", "u1").Return([]model.Post{post}, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/feed", nil)
	w := httptest.NewRecorder()
	setupRouter(svc, member).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	list := body.Data.([]interface{})
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, "time unknown", item["timeLabel"])
	assert.Equal(t, "Approved", item["badge"].(map[string]interface{})["label"])
	assert.NotContains(t, item["author"], "phoneNumber")

	media := item["media"].([]interface{})
	assert.Equal(t, "https://cdn.example.com/a.jpg?w=400", media[0].(map[string]interface{})["thumbnailUrl"])
	assert.Equal(t, "https://cdn.example.com/a.jpg?w=1200", media[0].(map[string]interface{})["fullUrl"])
	assert.Equal(t, "/static/placeholder.png", media[1].(map[string]interface{})["thumbnailUrl"])
}

func multipartBody(t *testing.T, caption string, files map[string]string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", caption))
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPostHandler_Create(t *testing.T) {
	t.Run("Multipart files reach the service", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("SubmitPost", "u1", "hello", []string{"a.jpg:img"}).
			Return(&model.Post{ID: "p1", Caption: "hello", Status: model.StatusPending, CreatedAt: time.Now()}, nil)

		body, ct := multipartBody(t, "hello", map[string]string{"a.jpg": "img"})
		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		setupRouter(svc, member).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).Data.(map[string]interface{})
		assert.Equal(t, "Pending Approval", data["badge"].(map[string]interface{})["label"])
		assert.Equal(t, "Just now", data["timeLabel"])
		svc.AssertExpectations(t)
	})

	t.Run("Failures echo the caption", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("SubmitPost", "u1", "hello", []string{}).
			Return(nil, &apperr.SubmissionError{Op: "createPost", Err: &apperr.NetworkError{Op: "createPost", Err: io.EOF}})

		body, ct := multipartBody(t, "hello", nil)
		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		setupRouter(svc, member).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		res := decode(t, w)
		assert.Equal(t, response.ErrNetwork, res.Code)
		assert.Equal(t, map[string]interface{}{"caption": "hello"}, res.Data)
	})

	t.Run("Non-multipart body is a bad request", func(t *testing.T) {
		svc := new(MockPostService)
		req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewBufferString(`{"caption":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc, member).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SubmitPost", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPostHandler_Moderation(t *testing.T) {
	admin := session.Identity{Authenticated: true, User: userModel.User{ID: "admin", Role: userModel.RoleAdmin}}

	t.Run("Reject forwards the reason", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("Reject", "admin", "p1", "spam").
			Return(&model.Post{ID: "p1", Status: model.StatusRejected, RejectionReason: "spam"}, nil)

		req := httptest.NewRequest(http.MethodPut, "/posts/p1/reject", bytes.NewBufferString(`{"reason":"spam"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc, admin).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).Data.(map[string]interface{})
		assert.Equal(t, "rejected", data["status"])
		assert.Equal(t, "danger", data["badge"].(map[string]interface{})["visualClass"])
	})

	t.Run("Invalid transition maps to conflict", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("Approve", "admin", "p1").Return(nil, &apperr.InvalidTransitionError{From: "rejected", To: "approved"})

		req := httptest.NewRequest(http.MethodPut, "/posts/p1/approve", nil)
		w := httptest.NewRecorder()
		setupRouter(svc, admin).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, response.ErrInvalidTransition, decode(t, w).Code)
	})

	t.Run("Permission errors map to forbidden", func(t *testing.T) {
		svc := new(MockPostService)
		svc.On("Approve", "u1", "p1").Return(nil, &apperr.PermissionError{Action: "approve"})

		req := httptest.NewRequest(http.MethodPut, "/posts/p1/approve", nil)
		w := httptest.NewRecorder()
		setupRouter(svc, member).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestPostHandler_Submissions(t *testing.T) {
	svc := new(MockPostService)
	subs := []model.Submission{{PostID: "p1", Status: model.StatusPending, Badge: model.StatusBadge(model.Post{})}}
	svc.On("Submissions", "u1", 10, 10).Return(subs, int64(11), nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/submissions?page=2", nil)
	w := httptest.NewRecorder()
	setupRouter(svc, member).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(11), data["total"])
	assert.Equal(t, float64(2), data["page"])
}

func TestPresenter_Comments(t *testing.T) {
	p := NewPresenter(testMedia)
	now := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	audio := commentModel.Comment{ID: "c1", AudioURL: "https://cdn.example.com/a.wav", CreatedAt: now.Add(-47 * time.Hour)}
	audio.Normalize()
	stale := commentModel.Comment{ID: "c2", AudioURL: "https://cdn.example.com/b.wav", CreatedAt: now.Add(-49 * time.Hour)}
	stale.Normalize()
	text := commentModel.Comment{ID: "c3", Content: "nice"}

	view := p.Post(model.Post{ID: "p1", CreatedAt: now.Add(-2 * time.Hour), Comments: []commentModel.Comment{audio, stale, text}})
	assert.Equal(t, "2h ago", view.TimeLabel)
	require.Len(t, view.Comments, 3)
	assert.Equal(t, "1h remaining", view.Comments[0].ExpiryLabel)
	assert.True(t, view.Comments[1].Expired)
	assert.Equal(t, "", view.Comments[2].ExpiryLabel)
}
