package repository

import (
	"context"

	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/gorm"
)

// templateRepository 实现
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建 Repository 实例
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// List 获取所有模板
func (r *templateRepository) List(ctx context.Context) ([]model.Template, error) {
	var templates []model.Template
	result := r.db.WithContext(ctx).Order("id ASC").Find(&templates)
	return templates, result.Error
}

// Get 根据ID获取模板
func (r *templateRepository) Get(ctx context.Context, id int) (*model.Template, error) {
	var template model.Template
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &template, nil
}

// GetByAlias 根据alias获取模板
func (r *templateRepository) GetByAlias(ctx context.Context, alias string) (*model.Template, error) {
	var template model.Template
	if err := r.db.WithContext(ctx).Where("alias = ?", alias).First(&template).Error; err != nil {
		return nil, notFound(err)
	}
	return &template, nil
}

// Create 创建模板
func (r *templateRepository) Create(ctx context.Context, template *model.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// Save 保存模板
func (r *templateRepository) Save(ctx context.Context, template *model.Template) error {
	return r.db.WithContext(ctx).Save(template).Error
}
