package repository

import (
	"context"

	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/gorm"
)

type contentTypeRepository struct {
	db *gorm.DB
}

// NewContentTypeRepository 创建 Repository 实例
func NewContentTypeRepository(db *gorm.DB) ContentTypeRepository {
	return &contentTypeRepository{db: db}
}

// List 获取所有内容类型
func (r *contentTypeRepository) List(ctx context.Context) ([]model.ContentType, error) {
	var contentTypes []model.ContentType
	result := r.db.WithContext(ctx).Order("id ASC").Find(&contentTypes)
	return contentTypes, result.Error
}

// Get 根据ID获取内容类型
func (r *contentTypeRepository) Get(ctx context.Context, id int) (*model.ContentType, error) {
	var contentType model.ContentType
	if err := r.db.WithContext(ctx).First(&contentType, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &contentType, nil
}

// GetByAlias 根据alias获取内容类型
func (r *contentTypeRepository) GetByAlias(ctx context.Context, alias string) (*model.ContentType, error) {
	var contentType model.ContentType
	if err := r.db.WithContext(ctx).Where("alias = ?", alias).First(&contentType).Error; err != nil {
		return nil, notFound(err)
	}
	return &contentType, nil
}

// Create 创建内容类型
func (r *contentTypeRepository) Create(ctx context.Context, contentType *model.ContentType) error {
	return r.db.WithContext(ctx).Create(contentType).Error
}

// Save 保存内容类型
func (r *contentTypeRepository) Save(ctx context.Context, contentType *model.ContentType) error {
	return r.db.WithContext(ctx).Save(contentType).Error
}

// GetAllowedChildIDs 获取允许的子内容类型ID，按声明顺序
func (r *contentTypeRepository) GetAllowedChildIDs(ctx context.Context, contentTypeID int) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).Model(&model.ContentTypeAllowedChild{}).
		Where("content_type_id = ?", contentTypeID).
		Order("sort_order ASC").
		Pluck("child_id", &ids).Error
	return ids, err
}

// SetAllowedChildIDs 覆盖允许的子内容类型列表
func (r *contentTypeRepository) SetAllowedChildIDs(ctx context.Context, contentTypeID int, childIDs []int) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("content_type_id = ?", contentTypeID).Delete(&model.ContentTypeAllowedChild{}).Error; err != nil {
		return err
	}
	if len(childIDs) == 0 {
		return nil
	}
	rows := make([]model.ContentTypeAllowedChild, 0, len(childIDs))
	for i, id := range childIDs {
		rows = append(rows, model.ContentTypeAllowedChild{ContentTypeID: contentTypeID, ChildID: id, SortOrder: i})
	}
	return db.Create(&rows).Error
}

// GetAllowedTemplateIDs 获取允许的模板ID
func (r *contentTypeRepository) GetAllowedTemplateIDs(ctx context.Context, contentTypeID int) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).Model(&model.ContentTypeTemplate{}).
		Where("content_type_id = ?", contentTypeID).
		Order("template_id ASC").
		Pluck("template_id", &ids).Error
	return ids, err
}

// SetAllowedTemplateIDs 覆盖允许的模板列表
func (r *contentTypeRepository) SetAllowedTemplateIDs(ctx context.Context, contentTypeID int, templateIDs []int) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("content_type_id = ?", contentTypeID).Delete(&model.ContentTypeTemplate{}).Error; err != nil {
		return err
	}
	if len(templateIDs) == 0 {
		return nil
	}
	rows := make([]model.ContentTypeTemplate, 0, len(templateIDs))
	for _, id := range templateIDs {
		rows = append(rows, model.ContentTypeTemplate{ContentTypeID: contentTypeID, TemplateID: id})
	}
	return db.Create(&rows).Error
}

// GetPropertyTypes 获取内容类型的全部属性
func (r *contentTypeRepository) GetPropertyTypes(ctx context.Context, contentTypeID int) ([]model.PropertyType, error) {
	var propertyTypes []model.PropertyType
	result := r.db.WithContext(ctx).Where("content_type_id = ?", contentTypeID).
		Order("sort_order ASC, id ASC").
		Find(&propertyTypes)
	return propertyTypes, result.Error
}

// GetPropertyType 根据alias获取属性
func (r *contentTypeRepository) GetPropertyType(ctx context.Context, contentTypeID int, alias string) (*model.PropertyType, error) {
	var propertyType model.PropertyType
	err := r.db.WithContext(ctx).
		Where("content_type_id = ? AND alias = ?", contentTypeID, alias).
		First(&propertyType).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &propertyType, nil
}

// AddPropertyType 新增属性
func (r *contentTypeRepository) AddPropertyType(ctx context.Context, propertyType *model.PropertyType) error {
	return r.db.WithContext(ctx).Create(propertyType).Error
}

// SavePropertyType 保存属性
func (r *contentTypeRepository) SavePropertyType(ctx context.Context, propertyType *model.PropertyType) error {
	return r.db.WithContext(ctx).Save(propertyType).Error
}

// GetTabs 获取内容类型的标签页
func (r *contentTypeRepository) GetTabs(ctx context.Context, contentTypeID int) ([]model.Tab, error) {
	var tabs []model.Tab
	result := r.db.WithContext(ctx).Where("content_type_id = ?", contentTypeID).
		Order("sort_order ASC, id ASC").
		Find(&tabs)
	return tabs, result.Error
}

// AddTab 创建标签页，返回数据库分配的ID
func (r *contentTypeRepository) AddTab(ctx context.Context, contentTypeID int, caption string) (int, error) {
	tab := &model.Tab{ContentTypeID: contentTypeID, Caption: caption}
	if err := r.db.WithContext(ctx).Create(tab).Error; err != nil {
		return 0, err
	}
	return tab.ID, nil
}

// SetTabCaption 修改标签页名称
func (r *contentTypeRepository) SetTabCaption(ctx context.Context, tabID int, caption string) error {
	return r.db.WithContext(ctx).Model(&model.Tab{}).Where("id = ?", tabID).Update("caption", caption).Error
}

// SetTabSortOrder 修改标签页排序
func (r *contentTypeRepository) SetTabSortOrder(ctx context.Context, tabID int, sortOrder int) error {
	return r.db.WithContext(ctx).Model(&model.Tab{}).Where("id = ?", tabID).Update("sort_order", sortOrder).Error
}
