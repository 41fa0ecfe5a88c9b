package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type EventType string

const (
	TypeNotification     EventType = "notification"
	TypeModerationResult EventType = "moderation_result"
)

// Event 推送给浏览器的消息
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrHubClosed Run 已退出，不再接受新连接
var ErrHubClosed = errors.New("realtime hub closed")

type outbound struct {
	userID  string
	payload []byte
}

// Hub 管理在线连接，按用户 ID 分发消息
type Hub struct {
	register   chan *Client
	unregister chan *Client
	send       chan outbound
	// Run 退出时关闭
	done     chan struct{}
	doneOnce sync.Once

	// 同一用户可以有多个标签页
	userConnections map[string]map[*Client]struct{}
	mutex           sync.RWMutex

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		register:        make(chan *Client, 64),
		unregister:      make(chan *Client, 64),
		send:            make(chan outbound, 256),
		done:            make(chan struct{}),
		userConnections: make(map[string]map[*Client]struct{}),
		log:             log,
	}
}

// Run 事件循环，ctx 取消后关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer h.doneOnce.Do(func() { close(h.done) })
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			conns, ok := h.userConnections[client.userID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.userConnections[client.userID] = conns
			}
			conns[client] = struct{}{}
			h.mutex.Unlock()
			h.log.Debug("ws client registered", zap.String("user_id", client.userID))

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.send:
			h.mutex.RLock()
			var stale []*Client
			for client := range h.userConnections[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					stale = append(stale, client)
				}
			}
			h.mutex.RUnlock()
			for _, client := range stale {
				h.remove(client)
			}

		case <-ctx.Done():
			h.mutex.Lock()
			for userID, conns := range h.userConnections {
				for client := range conns {
					close(client.send)
				}
				delete(h.userConnections, userID)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// join 注册连接，hub 已停止时返回 false
func (h *Hub) join(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave 注销连接，hub 已停止时直接返回
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns, ok := h.userConnections[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.userConnections, client.userID)
	}
}

// SendToUser 非阻塞发送，队列满时丢弃
func (h *Hub) SendToUser(userID string, eventType EventType, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		h.log.Warn("marshal ws event failed", zap.Error(err))
		return
	}
	select {
	case h.send <- outbound{userID: userID, payload: payload}:
	default:
		h.log.Warn("ws send queue full, event dropped", zap.String("user_id", userID))
	}
}

// Online 用户当前连接数
func (h *Hub) Online(userID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.userConnections[userID])
}
