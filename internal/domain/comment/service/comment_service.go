package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"social_moderation/internal/domain/comment/model"
	"social_moderation/internal/domain/comment/repository"
	postModel "social_moderation/internal/domain/post/model"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/config"
	"social_moderation/internal/pkg/metrics"
	"social_moderation/internal/pkg/session"
	"social_moderation/internal/pkg/uploader"

	"go.uber.org/zap"
)

// AudioInput 已录好的语音
type AudioInput struct {
	File            uploader.File
	DurationSeconds int
}

// CreateInput 文字与语音二选一
type CreateInput struct {
	Content string
	Audio   *AudioInput
}

// CommentService 评论服务
type CommentService interface {
	CreateComment(ctx context.Context, actor session.Identity, postID string, input CreateInput) (*model.Comment, error)
	// RecordAudio 从设备录制直到输入结束，然后作为语音评论提交
	// durationSeconds 为客户端报告的时长，<= 0 时使用录制耗时
	RecordAudio(ctx context.Context, actor session.Identity, postID string, dev model.Device, durationSeconds int) (*model.Comment, error)
	List(ctx context.Context, viewer session.Identity, postID string) ([]model.View, error)
}

// PostFinder 按查看者的可见性解析帖子，不可见时返回 apperr.ErrNotFound
// 评论随帖子快照返回，写入后需要 Invalidate
type PostFinder interface {
	Visible(ctx context.Context, viewer session.Identity, postID string) (*postModel.Post, error)
	Invalidate(ctx context.Context)
}

type commentService struct {
	repo      repository.CommentRepository
	posts     PostFinder
	uploader  uploader.Uploader
	recorders *RecorderRegistry
	metrics   *metrics.Collector
	log       *zap.Logger
	now       func() time.Time
}

func NewCommentService(repo repository.CommentRepository, posts PostFinder, up uploader.Uploader, recorders *RecorderRegistry, m *metrics.Collector, log *zap.Logger) CommentService {
	if log == nil {
		log = zap.NewNop()
	}
	if recorders == nil {
		recorders = NewRecorderRegistry(config.DefaultMaxUploadBytes)
	}
	return &commentService{repo: repo, posts: posts, uploader: up, recorders: recorders, metrics: m, log: log, now: time.Now}
}

// ValidateInput 文字与语音必须且只能提供一个，语音不超过 limit
func ValidateInput(input CreateInput, limit int64) error {
	hasText := strings.TrimSpace(input.Content) != ""
	hasAudio := input.Audio != nil
	switch {
	case !hasText && !hasAudio:
		return apperr.Validation("content", "Comment cannot be empty")
	case hasText && hasAudio:
		return apperr.Validation("content", "A comment is either text or a voice recording, not both")
	}
	if hasAudio && limit > 0 && input.Audio.File.Size > limit {
		return model.AudioTooLarge(limit)
	}
	return nil
}

func (s *commentService) CreateComment(ctx context.Context, actor session.Identity, postID string, input CreateInput) (*model.Comment, error) {
	if !actor.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	if err := ValidateInput(input, s.recorders.MaxBytes()); err != nil {
		return nil, err
	}
	if _, err := s.posts.Visible(ctx, actor, postID); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, postID, input)
}

// create 调用方已完成登录、参数和可见性检查
func (s *commentService) create(ctx context.Context, actor session.Identity, postID string, input CreateInput) (*model.Comment, error) {
	kind := model.KindText
	content := strings.TrimSpace(input.Content)
	if input.Audio != nil {
		kind = model.KindAudio
		url, err := s.uploader.Upload(ctx, input.Audio.File)
		if err != nil {
			return nil, asSubmission("upload", err)
		}
		content = url
	}

	c, err := s.repo.Add(ctx, actor.RemoteToken, postID, actor.User.ID, content, kind)
	if err != nil {
		return nil, asSubmission("addComment", err)
	}
	s.posts.Invalidate(ctx)

	if c.Author.ID == "" {
		c.Author = actor.User
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	if kind == model.KindAudio {
		c.AudioURL = content
		c.Content = ""
		c.DurationSeconds = input.Audio.DurationSeconds
	}
	c.Normalize()

	s.metrics.RecordComment(string(kind))
	s.log.Info("comment created",
		zap.String("post_id", postID),
		zap.String("comment_id", c.ID),
		zap.String("kind", string(kind)))
	return c, nil
}

func (s *commentService) RecordAudio(ctx context.Context, actor session.Identity, postID string, dev model.Device, durationSeconds int) (*model.Comment, error) {
	if !actor.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}

	// 先确认可以评论，避免录完才发现帖子不可见
	if _, err := s.posts.Visible(ctx, actor, postID); err != nil {
		return nil, err
	}

	recorder, release, err := s.recorders.Acquire(actor.SessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := recorder.Start(ctx, dev); err != nil {
		return nil, fmt.Errorf("start recording: %w", err)
	}
	rec, err := recorder.Finish(ctx)
	if err != nil {
		return nil, err
	}
	if len(rec.Data) == 0 {
		return nil, apperr.Validation("audio", "Recording is empty")
	}
	if durationSeconds <= 0 {
		durationSeconds = int(rec.Duration / time.Second)
	}

	input := CreateInput{Audio: &AudioInput{
		File: uploader.File{
			Name:        "voice.wav",
			ContentType: rec.ContentType,
			Size:        int64(len(rec.Data)),
			Reader:      bytes.NewReader(rec.Data),
		},
		DurationSeconds: durationSeconds,
	}}
	if err := ValidateInput(input, s.recorders.MaxBytes()); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, postID, input)
}

// List 评论随帖子返回，帖子对查看者不可见时视为不存在；剩余时间在读取时计算
func (s *commentService) List(ctx context.Context, viewer session.Identity, postID string) ([]model.View, error) {
	post, err := s.posts.Visible(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.View, len(post.Comments))
	for i, c := range post.Comments {
		out[i] = model.ViewOf(c, now)
	}
	return out, nil
}

func asSubmission(op string, err error) error {
	var se *apperr.SubmissionError
	if errors.As(err, &se) {
		return err
	}
	return &apperr.SubmissionError{Op: op, Err: err}
}
