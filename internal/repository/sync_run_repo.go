package repository

import (
	"context"

	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/gorm"
)

type syncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

func (r *syncRunRepository) Create(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *syncRunRepository) Save(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *syncRunRepository) Get(ctx context.Context, id string) (*model.SyncRun, error) {
	var run model.SyncRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, notFound(err)
	}
	return &run, nil
}

// List 查询同步记录，最新的在前
func (r *syncRunRepository) List(ctx context.Context, limit int) ([]model.SyncRun, error) {
	var runs []model.SyncRun
	tx := r.db.WithContext(ctx).Model(&model.SyncRun{}).Order("started_at desc, id desc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
