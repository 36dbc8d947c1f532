package database

import (
	"context"
	"errors"

	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/repository"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// SeedBuiltinDataTypes 写入 CMS 自带的数据类型，已存在则跳过
func SeedBuiltinDataTypes(ctx context.Context, db *gorm.DB) error {
	repo := repository.NewDataTypeRepository(db)
	for _, dataType := range domain.BuiltinDataTypes {
		_, err := repo.GetByUniqueID(ctx, dataType.UniqueID.String())
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		node, editor := repository.NewDataTypeRows(dataType)
		if err := repo.Install(ctx, node, editor); err != nil {
			return err
		}
		klog.V(6).Infof("已写入内置数据类型: id=%d, name=%s", node.ID, node.Text)
	}
	return nil
}
