package handler

import (
	"net/http"

	"social_moderation/internal/domain/notification/service"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/realtime"
	"social_moderation/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service  service.NotificationService
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewNotificationHandler(service service.NotificationService, hub *realtime.Hub, upgrader websocket.Upgrader, log *zap.Logger) *NotificationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationHandler{service: service, hub: hub, upgrader: upgrader, log: log}
}

// List 通知列表
// @Summary 通知列表与未读数
// @Tags Notification
// @Produce json
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	inbox, err := h.service.List(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, inbox)
}

// MarkRead 标记已读
// @Summary 标记单条已读
// @Tags Notification
// @Produce json
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 全部已读
// @Summary 全部标记已读
// @Tags Notification
// @Produce json
// @Success 200 {object} response.Response
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, gin.H{"marked": n})
}

// Subscribe 实时推送
// @Summary 审核结果实时推送（websocket）
// @Tags Notification
// @Router /notifications/ws [get]
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "realtime delivery is disabled")
		return
	}
	id := middleware.CurrentIdentity(c)
	if err := h.hub.ServeWS(h.upgrader, c.Writer, c.Request, id.User.ID); err != nil {
		// Upgrade 失败时已写回 HTTP 错误；hub 停止时连接已关闭
		h.log.Debug("websocket subscribe failed", zap.String("user_id", id.User.ID), zap.Error(err))
	}
}
