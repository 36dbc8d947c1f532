package syncservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencodefirst/codefirst/internal/eventbus"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// DataTypeReconciler 安装声明的数据类型
// 只安装缺失的数据类型，已安装的不做任何收敛
type DataTypeReconciler struct {
	registry registry.Registry
	store    *repository.Store
	events   publisher
}

func NewDataTypeReconciler(reg registry.Registry, store *repository.Store, bus *eventbus.SchemaEventBus) *DataTypeReconciler {
	return &DataTypeReconciler{
		registry: reg,
		store:    store,
		events:   publisher{bus: bus},
	}
}

func (r *DataTypeReconciler) Synchronize(ctx context.Context) error {
	installed := 0
	for _, dataType := range r.registry.DataTypes() {
		_, err := r.store.DataTypes.GetByUniqueID(ctx, dataType.UniqueID.String())
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up data type %s: %w", dataType.Name, err)
		}

		node, editor := repository.NewDataTypeRows(dataType)
		if err := r.store.DataTypes.Install(ctx, node, editor); err != nil {
			return fmt.Errorf("failed to install data type %s: %w", dataType.Name, err)
		}
		installed++
		klog.V(6).Infof("已安装数据类型: name=%s, id=%d, dbType=%s", dataType.Name, node.ID, editor.DBType)
		r.events.publish(ctx, created(eventbus.NodeDataType, dataType.Name, node.ID))
	}
	klog.V(6).Infof("数据类型同步完成: installed=%d", installed)
	return nil
}
