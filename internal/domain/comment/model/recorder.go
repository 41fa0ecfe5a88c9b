package model

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"social_moderation/internal/pkg/apperr"
	"social_moderation/pkg/utils"
)

var (
	ErrNotRecording = errors.New("no recording in progress")
	// ErrRecordingActive 与 apperr 中的哨兵相同，便于统一映射响应
	ErrRecordingActive = apperr.ErrRecordingActive
)

// AudioTooLarge 语音超过上限
func AudioTooLarge(limit int64) error {
	return apperr.Validation("audio", "Audio recording exceeds the "+utils.SizeLabel(limit)+" limit")
}

// Stream 一次录音占用的输入流，Close 释放底层设备并使阻塞中的 Read 返回
type Stream interface {
	io.Reader
	Close() error
}

// Device 音频输入设备
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Recording 完成的录音
type Recording struct {
	Data        []byte
	ContentType string
	Duration    time.Duration
}

// Recorder 独占一个 Stream，Stop、Discard 或 ctx 取消时都会释放
type Recorder struct {
	mu        sync.Mutex
	stream    Stream
	buf       bytes.Buffer
	started   time.Time
	done      chan struct{}
	copyErr   error
	stopWatch func() bool
	now       func() time.Time
	maxBytes  int64
}

func NewRecorder(maxBytes int64) *Recorder {
	return &Recorder{now: time.Now, maxBytes: maxBytes}
}

// Recording 是否正在录音
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// Start 打开设备开始录音，已在录音时返回 ErrRecordingActive
func (r *Recorder) Start(ctx context.Context, dev Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream != nil {
		return ErrRecordingActive
	}

	stream, err := dev.Open(ctx)
	if err != nil {
		return err
	}

	r.stream = stream
	r.buf.Reset()
	r.copyErr = nil
	r.started = r.now()
	r.done = make(chan struct{})

	src := io.Reader(stream)
	if r.maxBytes > 0 {
		// 多读一个字节用于判断是否超限
		src = io.LimitReader(stream, r.maxBytes+1)
	}
	go func(done chan struct{}) {
		defer close(done)
		_, err := io.Copy(&r.buf, src)
		r.copyErr = err
	}(r.done)

	r.stopWatch = context.AfterFunc(ctx, func() {
		_ = r.Discard()
	})
	return nil
}

// Stop 结束录音并释放设备，返回录音内容
func (r *Recorder) Stop() (*Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil {
		return nil, ErrNotRecording
	}

	done := r.done
	closeErr := r.release()
	<-done

	if r.copyErr != nil && !errors.Is(r.copyErr, io.ErrClosedPipe) {
		return nil, r.copyErr
	}
	if r.maxBytes > 0 && int64(r.buf.Len()) > r.maxBytes {
		return nil, AudioTooLarge(r.maxBytes)
	}
	if closeErr != nil {
		return nil, closeErr
	}

	data := make([]byte, r.buf.Len())
	copy(data, r.buf.Bytes())
	r.buf.Reset()
	return &Recording{Data: data, ContentType: "audio/wav", Duration: r.now().Sub(r.started)}, nil
}

// Finish 等待设备读到末尾后结束录音，适用于有限长度的输入（如上传的文件）
// ctx 先结束时丢弃录音
func (r *Recorder) Finish(ctx context.Context) (*Recording, error) {
	r.mu.Lock()
	if r.stream == nil {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
		// 取消同样会让输入提前结束
		if err := ctx.Err(); err != nil {
			_ = r.Discard()
			return nil, err
		}
		return r.Stop()
	case <-ctx.Done():
		_ = r.Discard()
		return nil, ctx.Err()
	}
}

// Discard 丢弃正在进行的录音，未录音时为空操作
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil {
		return nil
	}
	done := r.done
	err := r.release()
	<-done
	r.buf.Reset()
	return err
}

// release 调用方持有锁
func (r *Recorder) release() error {
	if r.stopWatch != nil {
		r.stopWatch()
		r.stopWatch = nil
	}
	err := r.stream.Close()
	r.stream = nil
	return err
}

// ReaderDevice 把有限长度的输入（如上传的音频文件）当作设备
type ReaderDevice struct {
	Source io.ReadCloser
}

func (d ReaderDevice) Open(context.Context) (Stream, error) {
	if d.Source == nil {
		return nil, errors.New("audio source is empty")
	}
	return d.Source, nil
}
