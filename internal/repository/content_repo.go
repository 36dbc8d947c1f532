package repository

import (
	"context"

	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/gorm"
)

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository 创建 Repository 实例
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

// Get 根据ID获取内容节点
func (r *contentRepository) Get(ctx context.Context, id int) (*model.Content, error) {
	var content model.Content
	if err := r.db.WithContext(ctx).First(&content, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &content, nil
}

// Create 创建内容节点
func (r *contentRepository) Create(ctx context.Context, content *model.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

// GetVersion 获取指定版本
func (r *contentRepository) GetVersion(ctx context.Context, contentID int, versionID string) (*model.ContentVersion, error) {
	var version model.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND version_id = ?", contentID, versionID).
		First(&version).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &version, nil
}

// GetNewestVersion 获取最新版本
func (r *contentRepository) GetNewestVersion(ctx context.Context, contentID int) (*model.ContentVersion, error) {
	var version model.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND newest = ?", contentID, true).
		Order("id DESC").
		First(&version).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &version, nil
}

// CreateVersion 新增版本，同时清除旧版本的最新标记
func (r *contentRepository) CreateVersion(ctx context.Context, version *model.ContentVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ContentVersion{}).
			Where("content_id = ? AND newest = ?", version.ContentID, true).
			Update("newest", false).Error; err != nil {
			return err
		}
		version.Newest = true
		return tx.Create(version).Error
	})
}
