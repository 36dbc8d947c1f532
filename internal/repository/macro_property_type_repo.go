package repository

import (
	"context"

	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/gorm"
)

type macroPropertyTypeRepository struct {
	db *gorm.DB
}

// NewMacroPropertyTypeRepository 创建 Repository 实例
func NewMacroPropertyTypeRepository(db *gorm.DB) MacroPropertyTypeRepository {
	return &macroPropertyTypeRepository{db: db}
}

func (r *macroPropertyTypeRepository) List(ctx context.Context) ([]model.MacroPropertyType, error) {
	var items []model.MacroPropertyType
	result := r.db.WithContext(ctx).Order("id ASC").Find(&items)
	return items, result.Error
}

func (r *macroPropertyTypeRepository) GetByAlias(ctx context.Context, alias string) (*model.MacroPropertyType, error) {
	var item model.MacroPropertyType
	if err := r.db.WithContext(ctx).Where("alias = ?", alias).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *macroPropertyTypeRepository) Create(ctx context.Context, macroPropertyType *model.MacroPropertyType) error {
	return r.db.WithContext(ctx).Create(macroPropertyType).Error
}

func (r *macroPropertyTypeRepository) Save(ctx context.Context, macroPropertyType *model.MacroPropertyType) error {
	return r.db.WithContext(ctx).Save(macroPropertyType).Error
}
