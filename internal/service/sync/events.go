package syncservice

import (
	"context"

	"github.com/opencodefirst/codefirst/internal/eventbus"
	"k8s.io/klog/v2"
)

// publisher 在事务提交后发布节点事件，订阅者的错误只记录不中断同步
type publisher struct {
	bus *eventbus.SchemaEventBus
}

func (p publisher) publish(ctx context.Context, events ...eventbus.SchemaEvent) {
	for _, event := range events {
		if err := p.bus.Publish(ctx, event.Type, event); err != nil {
			klog.Errorf("[sync.publish] 事件处理失败: type=%s, node=%s, alias=%s, error=%v", event.Type, event.Node, event.Alias, err)
		}
	}
}

func created(node, alias string, id int) eventbus.SchemaEvent {
	return eventbus.SchemaEvent{Type: eventbus.SchemaNodeCreated, Node: node, Alias: alias, ID: id}
}

func updated(node, alias string, id int) eventbus.SchemaEvent {
	return eventbus.SchemaEvent{Type: eventbus.SchemaNodeUpdated, Node: node, Alias: alias, ID: id}
}
