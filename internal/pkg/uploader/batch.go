package uploader

import (
	"context"
	"sync"
)

// UploadAll 并发上传，结果与输入顺序一致；任一失败即取消其余上传
func UploadAll(ctx context.Context, u Uploader, files []File, concurrency int) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 结果数组，预分配大小
	urls := make([]string, len(files))

	var wg sync.WaitGroup
	var errOnce sync.Once
	var uploadErr error

	sem := make(chan struct{}, concurrency)

	for i, file := range files {
		wg.Add(1)
		go func(index int, f File) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			// 如果已经有错误发生，直接返回
			if ctx.Err() != nil {
				return
			}

			url, err := u.Upload(ctx, f)
			if err != nil {
				errOnce.Do(func() {
					uploadErr = err
					cancel()
				})
				return
			}

			// 直接按索引赋值，保证顺序
			urls[index] = url
		}(i, file)
	}

	wg.Wait()

	if uploadErr != nil {
		return nil, uploadErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}
