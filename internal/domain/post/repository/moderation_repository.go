package repository

import (
	"context"
	"errors"
	"fmt"

	"social_moderation/internal/domain/post/model"
	"social_moderation/internal/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModerationRepository 本地审核台账
type ModerationRepository interface {
	Create(ctx context.Context, rec *model.ModerationRecord) error
	GetByPostID(ctx context.Context, postID string) (*model.ModerationRecord, error)
	FindByPostIDs(ctx context.Context, postIDs []string) (map[string]*model.ModerationRecord, error)
	// Decide 仅当台账中没有该帖子或其仍为待审核时写入结论，返回是否写入
	Decide(ctx context.Context, rec *model.ModerationRecord) (bool, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.ModerationRecord, int64, error)
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) Create(ctx context.Context, rec *model.ModerationRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "post_id"}}, DoNothing: true}).
		Create(rec).Error
}

func (r *moderationRepository) GetByPostID(ctx context.Context, postID string) (*model.ModerationRecord, error) {
	var rec model.ModerationRecord
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("moderation record for post %s: %w", postID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// 单次 IN 查询的参数上限
const inChunk = 500

func (r *moderationRepository) FindByPostIDs(ctx context.Context, postIDs []string) (map[string]*model.ModerationRecord, error) {
	out := make(map[string]*model.ModerationRecord, len(postIDs))
	for start := 0; start < len(postIDs); start += inChunk {
		end := start + inChunk
		if end > len(postIDs) {
			end = len(postIDs)
		}
		var recs []model.ModerationRecord
		if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs[start:end]).Find(&recs).Error; err != nil {
			return nil, err
		}
		for i := range recs {
			out[recs[i].PostID] = &recs[i]
		}
	}
	return out, nil
}

func (r *moderationRepository) Decide(ctx context.Context, rec *model.ModerationRecord) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_id"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: rec.TableName(), Name: "status"}, Value: model.StatusPending},
		}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "reason", "reviewed_at", "reviewed_by", "updated_at"}),
	}).Create(rec)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *moderationRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.ModerationRecord, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&model.ModerationRecord{}).Where("user_id = ?", userID), offset, limit)
}

func (r *moderationRepository) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]model.ModerationRecord, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []model.ModerationRecord
	if err := query.Order("requested_at DESC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
