package syncservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/eventbus"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// TemplateReconciler 将声明的模板同步到模板节点
type TemplateReconciler struct {
	registry registry.Registry
	store    *repository.Store
	events   publisher
	ids      *IDMap
}

func NewTemplateReconciler(reg registry.Registry, store *repository.Store, bus *eventbus.SchemaEventBus) *TemplateReconciler {
	return &TemplateReconciler{
		registry: reg,
		store:    store,
		events:   publisher{bus: bus},
		ids:      NewIDMap(),
	}
}

// Synchronize 先确保每个模板存在（母版优先），再收敛名称和母版引用
func (r *TemplateReconciler) Synchronize(ctx context.Context) error {
	declared := r.registry.Discover(domain.KindTemplate)
	for _, t := range declared {
		if !r.registry.IsA(t.Name, domain.BaseTemplate) {
			return fmt.Errorf("%w: %s", domain.ErrTemplateType, t.Name)
		}
	}

	r.ids = NewIDMap()
	installed, err := r.store.Templates.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	byAlias := make(map[string]int, len(installed))
	for _, t := range installed {
		byAlias[t.Alias] = t.ID
	}
	for _, t := range declared {
		if id, ok := byAlias[t.Name]; ok {
			r.ids.Put(t.Name, id)
		}
	}

	for _, t := range declared {
		if _, err := r.ensure(ctx, t.Name, map[string]bool{}); err != nil {
			return err
		}
	}

	for _, t := range declared {
		if err := r.converge(ctx, t); err != nil {
			return err
		}
	}
	klog.V(6).Infof("模板同步完成: declared=%d, mapped=%d", len(declared), r.ids.Len())
	return nil
}

// masterOf 母版模板名，继承自 MasterPage 的模板没有母版
func masterOf(t domain.DeclaredType) string {
	master := t.MasterTemplate
	if master == "" {
		master = t.Parent
	}
	if master == domain.BaseTemplate {
		return ""
	}
	return master
}

func displayName(t domain.DeclaredType) string {
	if t.DisplayName == "" {
		return t.Name
	}
	return t.DisplayName
}

func (r *TemplateReconciler) ensure(ctx context.Context, name string, visiting map[string]bool) (int, error) {
	if name == "" || name == domain.BaseTemplate {
		return 0, nil
	}
	if id, ok := r.ids.ID(name); ok {
		return id, nil
	}
	if visiting[name] {
		return 0, fmt.Errorf("%w: master template cycle at %s", domain.ErrTemplateType, name)
	}
	visiting[name] = true

	t, ok := r.registry.Get(name)
	if !ok || t.Kind != domain.KindTemplate {
		return 0, fmt.Errorf("%w: %s is not a declared template", domain.ErrTemplateType, name)
	}

	masterID, err := r.ensure(ctx, masterOf(t), visiting)
	if err != nil {
		return 0, err
	}

	template := &model.Template{
		Alias:            t.Name,
		Name:             displayName(t),
		MasterTemplateID: masterID,
	}
	if err := r.store.Templates.Create(ctx, template); err != nil {
		return 0, fmt.Errorf("failed to create template %s: %w", t.Name, err)
	}
	r.ids.Put(t.Name, template.ID)
	klog.V(6).Infof("已创建模板: alias=%s, id=%d, master=%d", t.Name, template.ID, masterID)
	r.events.publish(ctx, created(eventbus.NodeTemplate, t.Name, template.ID))
	return template.ID, nil
}

func (r *TemplateReconciler) converge(ctx context.Context, t domain.DeclaredType) error {
	id, ok := r.ids.ID(t.Name)
	if !ok {
		return nil
	}
	template, err := r.store.Templates.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", t.Name, err)
	}

	masterID := 0
	if master := masterOf(t); master != "" {
		masterID, _ = r.ids.ID(master)
	}

	changed := false
	if name := displayName(t); template.Name != name {
		template.Name = name
		changed = true
	}
	if template.MasterTemplateID != masterID {
		template.MasterTemplateID = masterID
		changed = true
	}
	if !changed {
		return nil
	}
	if err := r.store.Templates.Save(ctx, template); err != nil {
		return fmt.Errorf("failed to save template %s: %w", t.Name, err)
	}
	klog.V(6).Infof("已更新模板: alias=%s, id=%d", t.Name, id)
	r.events.publish(ctx, updated(eventbus.NodeTemplate, t.Name, id))
	return nil
}

// TemplateID 返回已同步模板的 id
func (r *TemplateReconciler) TemplateID(name string) (int, bool) {
	return r.ids.ID(name)
}

// TemplateIDs 解析模板名列表，未安装的模板被忽略
func (r *TemplateReconciler) TemplateIDs(names []string) []int {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		if id, ok := r.ids.ID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// lookupTemplate 在映射之外按 alias 查找已安装的模板
func lookupTemplate(ctx context.Context, store *repository.Store, alias string) (int, bool, error) {
	t, err := store.Templates.GetByAlias(ctx, alias)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return t.ID, true, nil
}
