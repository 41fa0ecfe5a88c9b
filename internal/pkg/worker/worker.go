package worker

import (
	"context"
	"sync"
	"time"

	"social_moderation/internal/pkg/metrics"
	"social_moderation/internal/pkg/push"

	"go.uber.org/zap"
)

// PushTask 一次推送投递
type PushTask struct {
	Message push.Message
	Retry   int // 重试次数
}

// WorkerPool 异步投递审核结果推送，失败按次数退避重试
type WorkerPool struct {
	TaskQueue  chan PushTask
	RetryQueue chan PushTask // 重试队列
	Notifier   push.Notifier
	WorkerNum  int
	MaxRetry   int // 最大重试次数
	Backoff    time.Duration

	log     *zap.Logger
	metrics *metrics.Collector
	wg      sync.WaitGroup
	once    sync.Once
}

func NewWorkerPool(notifier push.Notifier, workerNum int, bufferSize int, log *zap.Logger, m *metrics.Collector) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize < 2 {
		bufferSize = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkerPool{
		TaskQueue:  make(chan PushTask, bufferSize),
		RetryQueue: make(chan PushTask, bufferSize/2),
		Notifier:   notifier,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
		Backoff:    time.Second,
		log:        log,
		metrics:    m,
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	// 启动重试处理协程
	go p.retryWorker(ctx)
	p.log.Info("push worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 关闭主队列并等待 worker 退出
func (p *WorkerPool) Stop() {
	p.once.Do(func() {
		close(p.TaskQueue)
	})
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for task := range p.TaskQueue {
		err := p.Notifier.PushToAccount(ctx, task.Message)
		if err == nil {
			p.metrics.RecordPush("delivered")
			continue
		}

		p.log.Warn("push delivery failed",
			zap.Int("worker", id),
			zap.String("account", task.Message.AccountID),
			zap.Int("attempt", task.Retry+1),
			zap.Error(err))

		// 如果未达到最大重试次数，加入重试队列
		if task.Retry < p.MaxRetry {
			task.Retry++
			select {
			case p.RetryQueue <- task:
				p.metrics.RecordPush("retried")
			default:
				p.logFailedTask(task, err)
			}
		} else {
			p.logFailedTask(task, err)
		}
	}
}

func (p *WorkerPool) retryWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(task.Retry) * p.Backoff):
			}
			p.requeue(task)
		}
	}
}

func (p *WorkerPool) requeue(task PushTask) {
	defer func() {
		// 主队列已关闭
		if recover() != nil {
			p.logFailedTask(task, nil)
		}
	}()
	select {
	case p.TaskQueue <- task:
	default:
		p.logFailedTask(task, nil)
	}
}

func (p *WorkerPool) logFailedTask(task PushTask, err error) {
	p.metrics.RecordPush("dropped")
	p.log.Error("push task dropped",
		zap.String("account", task.Message.AccountID),
		zap.String("title", task.Message.Title),
		zap.Int("retries", task.Retry),
		zap.Error(err))
}

// AddTask 非阻塞入队，队列满时丢弃
func (p *WorkerPool) AddTask(msg push.Message) {
	defer func() {
		if recover() != nil {
			p.logFailedTask(PushTask{Message: msg}, nil)
		}
	}()
	select {
	case p.TaskQueue <- PushTask{Message: msg}:
	default:
		p.logFailedTask(PushTask{Message: msg}, nil)
	}
}
