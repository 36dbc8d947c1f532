package syncservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencodefirst/codefirst/internal/eventbus"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// MacroPropertyTypeReconciler 同步宏参数类型，按 alias 匹配，从不删除
type MacroPropertyTypeReconciler struct {
	registry registry.Registry
	store    *repository.Store
	events   publisher
}

func NewMacroPropertyTypeReconciler(reg registry.Registry, store *repository.Store, bus *eventbus.SchemaEventBus) *MacroPropertyTypeReconciler {
	return &MacroPropertyTypeReconciler{
		registry: reg,
		store:    store,
		events:   publisher{bus: bus},
	}
}

func (r *MacroPropertyTypeReconciler) Synchronize(ctx context.Context) error {
	for _, m := range r.registry.MacroPropertyTypes() {
		existing, err := r.store.MacroPropertyTypes.GetByAlias(ctx, m.Alias)
		if errors.Is(err, repository.ErrNotFound) {
			row := &model.MacroPropertyType{
				Alias:    m.Alias,
				Name:     m.Name,
				Assembly: m.Assembly,
				TypeName: m.TypeName,
			}
			if err := r.store.MacroPropertyTypes.Create(ctx, row); err != nil {
				return fmt.Errorf("failed to create macro property type %s: %w", m.Alias, err)
			}
			klog.V(6).Infof("已创建宏参数类型: alias=%s, id=%d", m.Alias, row.ID)
			r.events.publish(ctx, created(eventbus.NodeMacroPropertyType, m.Alias, row.ID))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to look up macro property type %s: %w", m.Alias, err)
		}

		if existing.Name == m.Name && existing.Assembly == m.Assembly && existing.TypeName == m.TypeName {
			continue
		}
		existing.Name = m.Name
		existing.Assembly = m.Assembly
		existing.TypeName = m.TypeName
		if err := r.store.MacroPropertyTypes.Save(ctx, existing); err != nil {
			return fmt.Errorf("failed to save macro property type %s: %w", m.Alias, err)
		}
		r.events.publish(ctx, updated(eventbus.NodeMacroPropertyType, m.Alias, existing.ID))
	}
	return nil
}
