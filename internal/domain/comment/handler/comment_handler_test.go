package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"social_moderation/internal/domain/comment/model"
	"social_moderation/internal/domain/comment/service"
	userModel "social_moderation/internal/domain/user/model"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/session"
	"social_moderation/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) CreateComment(ctx context.Context, actor session.Identity, postID string, input service.CreateInput) (*model.Comment, error) {
	args := m.Called(postID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) RecordAudio(ctx context.Context, actor session.Identity, postID string, dev model.Device, durationSeconds int) (*model.Comment, error) {
	stream, err := dev.Open(ctx)
	if err != nil {
		return nil, err
	}
	raw, _ := io.ReadAll(stream)
	_ = stream.Close()
	args := m.Called(postID, string(raw), durationSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, viewer session.Identity, postID string) ([]model.View, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.View), args.Error(1)
}

func setupRouter(svc service.CommentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	id := session.Identity{SessionID: "s1", Authenticated: true, User: userModel.User{ID: "u1"}}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), id))
		c.Next()
	})
	h := NewCommentHandler(svc, 1024)
	r.GET("/posts/:id/comments", h.List)
	r.POST("/posts/:id/comments", h.Create)
	r.POST("/posts/:id/comments/audio", h.CreateAudio)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCommentHandler_Create(t *testing.T) {
	t.Run("Text comment is forwarded", func(t *testing.T) {
		svc := new(MockCommentService)
		svc.On("CreateComment", "p1", service.CreateInput{Content: "nice"}).Return(&model.Comment{ID: "c1", Content: "nice"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/posts/p1/comments", bytes.NewBufferString(`{"content":"nice"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Validation failure echoes the content", func(t *testing.T) {
		svc := new(MockCommentService)
		svc.On("CreateComment", "p1", service.CreateInput{Content: " "}).Return(nil, apperr.Validation("content", "Comment cannot be empty"))

		req := httptest.NewRequest(http.MethodPost, "/posts/p1/comments", bytes.NewBufferString(`{"content":" "}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "content", body.Field)
		assert.Equal(t, map[string]interface{}{"content": " "}, body.Data)
	})
}

func audioRequest(t *testing.T, content string, duration string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "voice.wav")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if duration != "" {
		require.NoError(t, mw.WriteField("duration", duration))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/p1/comments/audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCommentHandler_CreateAudio(t *testing.T) {
	t.Run("Uploaded file is the recording source", func(t *testing.T) {
		svc := new(MockCommentService)
		svc.On("RecordAudio", "p1", "RIFF", 15).Return(&model.Comment{ID: "c1", AudioURL: "https://cdn.example.com/voice.wav"}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, audioRequest(t, "RIFF", "15"))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Concurrent recording maps to conflict", func(t *testing.T) {
		svc := new(MockCommentService)
		svc.On("RecordAudio", "p1", "RIFF", 0).Return(nil, apperr.ErrRecordingActive)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, audioRequest(t, "RIFF", ""))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, response.ErrRecordingActive, decode(t, w).Code)
	})

	t.Run("Oversized audio is rejected before the service", func(t *testing.T) {
		svc := new(MockCommentService)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, audioRequest(t, strings.Repeat("a", 2048), "5"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w).Message, "exceeds the 1 KB limit")
		svc.AssertNotCalled(t, "RecordAudio", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing file is a bad request", func(t *testing.T) {
		svc := new(MockCommentService)
		req := httptest.NewRequest(http.MethodPost, "/posts/p1/comments/audio", nil)
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCommentHandler_List(t *testing.T) {
	svc := new(MockCommentService)
	svc.On("List", "p1").Return([]model.View{{Comment: model.Comment{ID: "c1"}, ExpiryLabel: "3h remaining"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/p1/comments", nil)
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w).Data.([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "3h remaining", list[0].(map[string]interface{})["expiryLabel"])
}
