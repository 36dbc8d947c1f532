package subscriber

import (
	"context"

	"github.com/opencodefirst/codefirst/internal/eventbus"
	"k8s.io/klog/v2"
)

// CacheInvalidator 结构变化后需要清空的缓存
type CacheInvalidator interface {
	Invalidate()
}

type SchemaEventSubscriber struct {
	caches []CacheInvalidator
}

func NewSchemaEventSubscriber(caches ...CacheInvalidator) *SchemaEventSubscriber {
	return &SchemaEventSubscriber{caches: caches}
}

func (s *SchemaEventSubscriber) Register(bus *eventbus.SchemaEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.SchemaNodeCreated, s.handleNodeChanged)
	bus.Subscribe(eventbus.SchemaNodeUpdated, s.handleNodeChanged)
}

// handleNodeChanged 内容类型或属性变化时清空缓存，其余节点只记录日志
func (s *SchemaEventSubscriber) handleNodeChanged(ctx context.Context, event eventbus.SchemaEvent) error {
	klog.V(6).Infof("结构事件: type=%s, node=%s, alias=%s, id=%d", event.Type, event.Node, event.Alias, event.ID)
	if event.Node != eventbus.NodeContentType && event.Node != eventbus.NodePropertyType {
		return nil
	}
	for _, cache := range s.caches {
		cache.Invalidate()
	}
	return nil
}
