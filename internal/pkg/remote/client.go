package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"strings"
	"time"

	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/metrics"
	"social_moderation/internal/pkg/trace"

	"go.uber.org/zap"
)

// GraphQLError 远端返回的业务错误（凭证错误、参数被拒绝等）
type GraphQLError struct {
	Op       string
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, strings.Join(e.Messages, "; "))
}

// Message 第一条错误信息，用于直接展示
func (e *GraphQLError) Message() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0]
}

// Client 远端 GraphQL 客户端
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
	metrics  *metrics.Collector

	// 远端 schema 缺少扩展字段的操作名，之后直接发送基础查询
	basicOps sync.Map
}

// NewClient 创建客户端
func NewClient(endpoint string, timeout time.Duration, log *zap.Logger, m *metrics.Collector) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log,
		metrics:  m,
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do 执行一次 GraphQL 操作，data 字段解码到 out
// 连接失败、超时、5xx 返回 *apperr.NetworkError；errors 字段非空返回 *GraphQLError
func (c *Client) Do(ctx context.Context, op, query string, vars map[string]interface{}, token string, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRemote(op, start, err)
		if err != nil {
			c.log.Warn("remote operation failed", zap.String("op", op), zap.Duration("cost", time.Since(start)), zap.Error(err))
		}
	}()

	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode %s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := trace.FromContext(ctx); id != "" {
		req.Header.Set(trace.Header, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return &apperr.NetworkError{Op: op, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var envelope gqlResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &GraphQLError{Op: op, Messages: []string{fmt.Sprintf("status %d", resp.StatusCode)}}
		}
		return fmt.Errorf("decode %s response: %w", op, err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return &GraphQLError{Op: op, Messages: msgs}
	}

	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return &GraphQLError{Op: op, Messages: []string{"no data returned"}}
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", op, err)
	}
	return nil
}

// IsRejection 是否为远端业务拒绝
func IsRejection(err error) bool {
	var ge *GraphQLError
	return errors.As(err, &ge)
}
