package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File 待上传文件
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Uploader 上传媒体文件，返回可公开访问的 URL
type Uploader interface {
	Upload(ctx context.Context, file File) (string, error)
}

var ErrEmptyURL = errors.New("upload response contained no url")

// objectKey 生成存储路径: YYYYMMDD/uuid.ext
func objectKey(name string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("%s/%s%s", now.Format("20060102"), uuid.New().String(), ext)
}
