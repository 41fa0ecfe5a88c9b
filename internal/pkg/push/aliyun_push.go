package push

import (
	"context"
	"encoding/json"
	"errors"

	"social_moderation/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
)

var ErrNotConfigured = errors.New("push config is missing")

// Message 一条推送
type Message struct {
	AccountID string
	Title     string
	Body      string
	Extras    map[string]string
}

// Notifier 推送到用户账号绑定的设备
type Notifier interface {
	PushToAccount(ctx context.Context, msg Message) error
}

type aliyunClient interface {
	Push(request *push.PushRequest) (*push.PushResponse, error)
}

type AliyunPushService struct {
	client aliyunClient
	appKey int64
}

func NewAliyunPushService(cfg config.PushConfig) (*AliyunPushService, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, ErrNotConfigured
	}

	client, err := push.NewClientWithAccessKey(
		cfg.RegionID,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
	)
	if err != nil {
		return nil, err
	}

	return &AliyunPushService{
		client: client,
		appKey: cfg.AppKey,
	}, nil
}

func (s *AliyunPushService) PushToAccount(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.Push(buildRequest(s.appKey, msg))
	return err
}

func buildRequest(appKey int64, msg Message) *push.PushRequest {
	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = msg.AccountID
	request.Title = msg.Title
	request.Body = msg.Body
	request.DeviceType = "ALL"
	request.PushType = "NOTICE"

	if len(msg.Extras) > 0 {
		extJSON, _ := json.Marshal(msg.Extras)
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}
	return request
}

// NopNotifier 未配置推送时使用
type NopNotifier struct{}

func (NopNotifier) PushToAccount(context.Context, Message) error { return nil }
