package uploader

import (
	"context"
	"fmt"
	"io"
	"time"

	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// ossBucket 便于测试替换
type ossBucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

type AliyunOSSUploader struct {
	bucket ossBucket
	config config.OSSConfig
	now    func() time.Time
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		bucket: bucket,
		config: cfg,
		now:    time.Now,
	}, nil
}

func (u *AliyunOSSUploader) Upload(ctx context.Context, file File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := objectKey(file.Name, u.now())

	var opts []oss.Option
	if file.ContentType != "" {
		opts = append(opts, oss.ContentType(file.ContentType))
	}

	if err := u.bucket.PutObject(filename, file.Reader, opts...); err != nil {
		return "", &apperr.SubmissionError{Op: "upload", Err: err}
	}

	// bucket 为 public-read 或挂 CDN
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, filename), nil
}

// New 按配置选择上传后端
func New(cfg *config.Config) (Uploader, error) {
	timeout := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second * 3
	switch cfg.Upload.Backend {
	case "oss":
		return NewAliyunOSSUploader(cfg.OSS)
	default:
		return NewHTTPUploader(cfg.Upload.Endpoint, timeout), nil
	}
}
