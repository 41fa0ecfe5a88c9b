package repository

import (
	"context"
	"time"

	"social_moderation/internal/domain/post/model"

	"github.com/jmoiron/sqlx"
)

// StatsRepository 管理后台统计，直接查询台账表
type StatsRepository interface {
	Stats(ctx context.Context, since time.Time) (*model.Stats, error)
}

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

const statsQuery = `
SELECT
    COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
    COALESCE(SUM(CASE WHEN status = 'approved' AND reviewed_at >= ? THEN 1 ELSE 0 END), 0) AS approved_today,
    COALESCE(SUM(CASE WHEN status = 'rejected' AND reviewed_at >= ? THEN 1 ELSE 0 END), 0) AS rejected_today,
    COUNT(*) AS total
FROM moderation_records
WHERE deleted_at IS NULL`

// Stats since 之后（含）的审核数计入 "今日"
func (r *statsRepository) Stats(ctx context.Context, since time.Time) (*model.Stats, error) {
	var stats model.Stats
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(statsQuery), since, since); err != nil {
		return nil, err
	}
	return &stats, nil
}
