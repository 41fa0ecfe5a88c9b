package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social_moderation/internal/domain/notification/model"
	userModel "social_moderation/internal/domain/user/model"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/realtime"
	"social_moderation/internal/pkg/session"
	"social_moderation/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, viewer session.Identity) (*model.Inbox, error) {
	args := m.Called(viewer.User.ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inbox), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, viewer session.Identity, id string) error {
	return m.Called(viewer.User.ID, id).Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, viewer session.Identity) (int, error) {
	args := m.Called(viewer.User.ID)
	return args.Int(0), args.Error(1)
}

func setupRouter(svc *MockNotificationService, hub *realtime.Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	id := session.Identity{Authenticated: true, User: userModel.User{ID: "u1"}}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), id))
		c.Next()
	})
	h := NewNotificationHandler(svc, hub, realtime.NewUpgrader(nil), nil)
	r.GET("/notifications", h.List)
	r.PUT("/notifications/:id/read", h.MarkRead)
	r.PUT("/notifications/read-all", h.MarkAllRead)
	r.GET("/notifications/ws", h.Subscribe)
	return r
}

func TestNotificationHandler(t *testing.T) {
	t.Run("List returns the inbox", func(t *testing.T) {
		svc := new(MockNotificationService)
		svc.On("List", "u1").Return(&model.Inbox{UnreadCount: 2, Summary: "You have 2 unread notifications"}, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(2), body.Data.(map[string]interface{})["unreadCount"])
	})

	t.Run("Unknown notification is 404", func(t *testing.T) {
		svc := new(MockNotificationService)
		svc.On("MarkRead", "u1", "n9").Return(apperr.ErrNotFound)

		w := httptest.NewRecorder()
		setupRouter(svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/notifications/n9/read", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Mark all read reports the count", func(t *testing.T) {
		svc := new(MockNotificationService)
		svc.On("MarkAllRead", "u1").Return(3, nil)

		w := httptest.NewRecorder()
		setupRouter(svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"marked":3`)
	})

	t.Run("Disabled hub is unavailable", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockNotificationService), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications/ws", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestNotificationHandler_Subscribe(t *testing.T) {
	hub := realtime.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(setupRouter(new(MockNotificationService), hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notifications/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Online("u1") == 1 }, time.Second, 10*time.Millisecond)
	hub.SendToUser("u1", realtime.TypeModerationResult, map[string]string{"postId": "p1", "status": "approved"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event realtime.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, realtime.TypeModerationResult, event.Type)
}
