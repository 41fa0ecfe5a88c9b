package service

import (
	"sync"

	"social_moderation/internal/domain/comment/model"
)

// RecorderRegistry 每个会话同时只允许一个录音
type RecorderRegistry struct {
	mu       sync.Mutex
	active   map[string]*model.Recorder
	maxBytes int64
}

func NewRecorderRegistry(maxBytes int64) *RecorderRegistry {
	return &RecorderRegistry{active: make(map[string]*model.Recorder), maxBytes: maxBytes}
}

// Acquire 为会话分配录音器，release 必须调用
func (r *RecorderRegistry) Acquire(sessionID string) (*model.Recorder, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[sessionID]; ok {
		return nil, nil, model.ErrRecordingActive
	}
	rec := model.NewRecorder(r.maxBytes)
	r.active[sessionID] = rec

	release := func() {
		_ = rec.Discard()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.active[sessionID] == rec {
			delete(r.active, sessionID)
		}
	}
	return rec, release, nil
}

// MaxBytes 单个录音上限
func (r *RecorderRegistry) MaxBytes() int64 {
	return r.maxBytes
}

// Recording 会话是否有录音在进行
func (r *RecorderRegistry) Recording(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[sessionID]
	return ok
}
