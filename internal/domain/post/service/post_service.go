package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"social_moderation/internal/domain/post/model"
	"social_moderation/internal/domain/post/repository"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/config"
	"social_moderation/internal/pkg/metrics"
	"social_moderation/internal/pkg/session"
	"social_moderation/internal/pkg/uploader"
	"social_moderation/pkg/utils"

	"go.uber.org/zap"
)

// SubmitInput 发帖参数
type SubmitInput struct {
	Caption string
	Files   []uploader.File
}

// PostService 帖子与审核
type PostService interface {
	SubmitPost(ctx context.Context, actor session.Identity, input SubmitInput) (*model.Post, error)
	Approve(ctx context.Context, actor session.Identity, postID string) (*model.Post, error)
	Reject(ctx context.Context, actor session.Identity, postID, reason string) (*model.Post, error)
	Feed(ctx context.Context, viewer session.Identity) ([]model.Post, error)
	UserPosts(ctx context.Context, viewer session.Identity, userID string) ([]model.Post, error)
	Submissions(ctx context.Context, actor session.Identity, offset, limit int) ([]model.Submission, int64, error)
	Pending(ctx context.Context, actor session.Identity, offset, limit int) ([]model.Post, int64, error)
	Stats(ctx context.Context, actor session.Identity) (*model.Stats, error)
}

// Options 可选依赖
type Options struct {
	Concurrency int
	// MaxUploadBytes 单个文件上限，<= 0 时取 config.DefaultMaxUploadBytes
	MaxUploadBytes int64
	Notifier    DecisionNotifier
	Metrics     *metrics.Collector
	Logger      *zap.Logger
}

type postService struct {
	posts       repository.PostRepository
	ledger      repository.ModerationRepository
	lookup      *PostLookup
	stats       repository.StatsRepository
	uploader    uploader.Uploader
	notifier    DecisionNotifier
	metrics     *metrics.Collector
	log         *zap.Logger
	concurrency int
	maxBytes    int64
	now         func() time.Time
}

func NewPostService(posts repository.PostRepository, ledger repository.ModerationRepository, stats repository.StatsRepository, up uploader.Uploader, opts Options) PostService {
	s := &postService{
		posts:       posts,
		ledger:      ledger,
		lookup:      NewPostLookup(posts, ledger),
		stats:       stats,
		uploader:    up,
		notifier:    opts.Notifier,
		metrics:     opts.Metrics,
		log:         opts.Logger,
		concurrency: opts.Concurrency,
		maxBytes:    opts.MaxUploadBytes,
		now:         time.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.concurrency <= 0 {
		s.concurrency = 5
	}
	if s.maxBytes <= 0 {
		s.maxBytes = config.DefaultMaxUploadBytes
	}
	return s
}

// SubmitPost 校验通过后才上传文件，新帖子一律为待审核
func (s *postService) SubmitPost(ctx context.Context, actor session.Identity, input SubmitInput) (*model.Post, error) {
	if !actor.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	caption := strings.TrimSpace(input.Caption)
	if err := ValidateSubmission(caption, input.Files, s.maxBytes); err != nil {
		s.metrics.RecordSubmission("invalid")
		return nil, err
	}
	if len(input.Files) > 0 && !actor.User.CanUpload && !actor.IsAdmin() {
		return nil, &apperr.PermissionError{Action: "upload media"}
	}

	urls, err := uploader.UploadAll(ctx, s.uploader, input.Files, s.concurrency)
	if err != nil {
		s.metrics.RecordSubmission("failed")
		return nil, asSubmission("upload", err)
	}

	post, err := s.posts.Create(ctx, actor.RemoteToken, actor.User.ID, caption, urls)
	if err != nil {
		s.metrics.RecordSubmission("failed")
		return nil, asSubmission("createPost", err)
	}

	now := s.now().UTC()
	post.Status = model.StatusPending
	if post.Author.ID == "" {
		post.Author = actor.User
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}

	rec := &model.ModerationRecord{
		PostID:      post.ID,
		UserID:      actor.User.ID,
		Caption:     caption,
		MediaURLs:   strings.Join(urls, "\n"),
		Status:      model.StatusPending,
		RequestedAt: now,
	}
	if err := s.ledger.Create(ctx, rec); err != nil {
		// 远端已创建成功，台账写入失败只影响提交历史
		s.log.Error("record submission failed", zap.String("post_id", post.ID), zap.Error(err))
	}

	s.metrics.RecordSubmission("ok")
	s.log.Info("post submitted", zap.String("post_id", post.ID), zap.String("user_id", actor.User.ID), zap.Int("media", len(urls)))
	return post, nil
}

// ValidateSubmission 标题与媒体至少其一，单个文件不超过 limit
func ValidateSubmission(caption string, files []uploader.File, limit int64) error {
	if strings.TrimSpace(caption) == "" && len(files) == 0 {
		return apperr.Validation("caption", "Please add a caption or at least one media file")
	}
	for _, f := range files {
		if f.Size > limit {
			return apperr.Validation("files", fmt.Sprintf("%s exceeds the %s limit", f.Name, utils.SizeLabel(limit)))
		}
	}
	return nil
}

func (s *postService) Approve(ctx context.Context, actor session.Identity, postID string) (*model.Post, error) {
	return s.decide(ctx, actor, postID, model.ActionApprove, "")
}

func (s *postService) Reject(ctx context.Context, actor session.Identity, postID, reason string) (*model.Post, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = model.DefaultRejectionReason
	}
	return s.decide(ctx, actor, postID, model.ActionReject, reason)
}

func (s *postService) decide(ctx context.Context, actor session.Identity, postID string, action model.Action, reason string) (*model.Post, error) {
	if err := requireAdmin(actor, string(action)); err != nil {
		return nil, err
	}

	post, err := s.find(ctx, actor.RemoteToken, postID)
	if err != nil {
		return nil, err
	}

	to, err := model.Transition(post.Status, action)
	if err != nil {
		return nil, err
	}

	// 远端只有通过接口，拒绝只记在本地台账
	if action == model.ActionApprove {
		if err := s.posts.Approve(ctx, actor.RemoteToken, postID); err != nil {
			return nil, asSubmission("approveUploadRequest", err)
		}
	}

	now := s.now().UTC()
	rec := &model.ModerationRecord{
		PostID:      post.ID,
		UserID:      post.Author.ID,
		Caption:     post.Caption,
		Status:      to,
		Reason:      reason,
		RequestedAt: post.CreatedAt,
		ReviewedAt:  &now,
		ReviewedBy:  actor.User.ID,
	}
	ok, err := s.ledger.Decide(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("record decision: %w", err)
	}
	if !ok {
		// 并发审核，另一位管理员已先给出结论
		return nil, &apperr.InvalidTransitionError{From: "decided", To: string(to)}
	}
	if action == model.ActionReject {
		s.posts.Invalidate(ctx)
	}

	post.ApplyRecord(rec)
	s.metrics.RecordDecision(string(to))
	s.log.Info("post moderated",
		zap.String("post_id", post.ID),
		zap.String("status", string(to)),
		zap.String("admin_id", actor.User.ID))

	if s.notifier != nil {
		s.notifier.Notify(ctx, *post)
	}
	return post, nil
}

func (s *postService) find(ctx context.Context, token, postID string) (*model.Post, error) {
	return s.lookup.Find(ctx, token, postID)
}

func (s *postService) Feed(ctx context.Context, viewer session.Identity) ([]model.Post, error) {
	posts, err := s.posts.List(ctx, viewer.RemoteToken)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, posts, viewer)
}

func (s *postService) UserPosts(ctx context.Context, viewer session.Identity, userID string) ([]model.Post, error) {
	posts, err := s.posts.ListByUser(ctx, viewer.RemoteToken, userID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, posts, viewer)
}

// assemble 合并台账结论、按可见性过滤、排序
func (s *postService) assemble(ctx context.Context, posts []model.Post, viewer session.Identity) ([]model.Post, error) {
	if err := s.merge(ctx, posts); err != nil {
		return nil, err
	}
	return model.AssembleFeed(model.FilterVisible(posts, viewer)), nil
}

func (s *postService) merge(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	records, err := s.ledger.FindByPostIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load moderation records: %w", err)
	}
	for i := range posts {
		posts[i].ApplyRecord(records[posts[i].ID])
	}
	return nil
}

func (s *postService) Submissions(ctx context.Context, actor session.Identity, offset, limit int) ([]model.Submission, int64, error) {
	if !actor.Authenticated {
		return nil, 0, apperr.ErrUnauthenticated
	}
	recs, total, err := s.ledger.ListByUser(ctx, actor.User.ID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Submission, len(recs))
	for i, rec := range recs {
		out[i] = model.Submission{
			ID:          rec.ID,
			PostID:      rec.PostID,
			Caption:     rec.Caption,
			Status:      rec.Status,
			Badge:       model.StatusBadge(model.Post{Status: rec.Status}),
			Reason:      rec.Reason,
			RequestedAt: rec.RequestedAt,
		}
	}
	return out, total, nil
}

// Pending 审核队列，包括不经本服务创建的帖子
func (s *postService) Pending(ctx context.Context, actor session.Identity, offset, limit int) ([]model.Post, int64, error) {
	if err := requireAdmin(actor, "list pending posts"); err != nil {
		return nil, 0, err
	}
	posts, err := s.posts.List(ctx, actor.RemoteToken)
	if err != nil {
		return nil, 0, err
	}
	if err := s.merge(ctx, posts); err != nil {
		return nil, 0, err
	}

	pending := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == model.StatusPending {
			pending = append(pending, p)
		}
	}
	pending = model.AssembleFeed(pending)

	start, end := utils.Window(len(pending), offset, limit)
	return pending[start:end], int64(len(pending)), nil
}

func (s *postService) Stats(ctx context.Context, actor session.Identity) (*model.Stats, error) {
	if err := requireAdmin(actor, "view stats"); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.stats.Stats(ctx, startOfDay)
}

func requireAdmin(actor session.Identity, action string) error {
	if !actor.Authenticated {
		return apperr.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return &apperr.PermissionError{Action: action}
	}
	return nil
}

func asSubmission(op string, err error) error {
	var se *apperr.SubmissionError
	if errors.As(err, &se) {
		return err
	}
	return &apperr.SubmissionError{Op: op, Err: err}
}
