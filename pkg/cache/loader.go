package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader 缓存穿透保护：同一 key 的并发未命中只触发一次加载
type Loader struct {
	cache CacheService
	group singleflight.Group
	log   *zap.Logger
}

// NewLoader cache 为 nil 时每次都直接加载（仍会合并并发请求）
func NewLoader(c CacheService, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{cache: c, log: log}
}

// Remember 先读缓存，未命中时调用 load 并写回，ttl <= 0 不写回
// 缓存读写失败只记录日志，不影响返回
func Remember[T any](ctx context.Context, l *Loader, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if l.cache != nil && ttl > 0 {
		var cached T
		err := l.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			l.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		// 合并后的加载不随某一个调用方取消
		loadCtx := context.WithoutCancel(ctx)
		val, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if l.cache != nil && ttl > 0 {
			if err := l.cache.Set(loadCtx, key, val, ttl); err != nil {
				l.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Forget 删除缓存，并让进行中的加载结果不再被后续调用复用
func (l *Loader) Forget(ctx context.Context, key string) {
	l.group.Forget(key)
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, key); err != nil {
		l.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
