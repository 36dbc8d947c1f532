package syncservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/eventbus"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// DocumentTypeReconciler 将声明的文档类型同步到内容类型节点
// 第一遍按继承顺序确保节点存在，第二遍逐个收敛属性
type DocumentTypeReconciler struct {
	registry  registry.Registry
	store     *repository.Store
	templates *TemplateReconciler
	events    publisher
	ids       *IDMap
}

func NewDocumentTypeReconciler(reg registry.Registry, store *repository.Store, templates *TemplateReconciler, bus *eventbus.SchemaEventBus) *DocumentTypeReconciler {
	return &DocumentTypeReconciler{
		registry:  reg,
		store:     store,
		templates: templates,
		events:    publisher{bus: bus},
		ids:       NewIDMap(),
	}
}

func (r *DocumentTypeReconciler) Synchronize(ctx context.Context) error {
	declared := r.registry.Discover(domain.KindDocumentType)
	for _, t := range declared {
		if !r.registry.IsA(t.Name, domain.BaseModelType) {
			return fmt.Errorf("%w: %s", domain.ErrDocumentType, t.Name)
		}
	}

	r.ids = NewIDMap()
	installed, err := r.store.ContentTypes.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list content types: %w", err)
	}
	byAlias := make(map[string]int, len(installed))
	for _, ct := range installed {
		byAlias[ct.Alias] = ct.ID
	}
	for _, t := range declared {
		if id, ok := byAlias[t.Name]; ok {
			r.ids.Put(t.Name, id)
		}
	}

	// 任何一个类型校验失败时不做任何写入
	for _, t := range declared {
		id, _ := r.ids.ID(t.Name)
		if err := r.validate(ctx, t, id); err != nil {
			return err
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
	klog.V(6).Infof("文档类型同步完成: declared=%d, mapped=%d", len(declared), r.ids.Len())
	return nil
}

// ContentTypeID 返回已同步文档类型的 id
func (r *DocumentTypeReconciler) ContentTypeID(name string) (int, bool) {
	return r.ids.ID(name)
}

// ensure 确保文档类型存在，父类型先于子类型创建
func (r *DocumentTypeReconciler) ensure(ctx context.Context, name string, visiting map[string]bool) (int, error) {
	if name == "" || name == domain.BaseModelType {
		return 0, nil
	}
	if id, ok := r.ids.ID(name); ok {
		return id, nil
	}
	if visiting[name] {
		return 0, fmt.Errorf("%w: inheritance cycle at %s", domain.ErrDocumentType, name)
	}
	visiting[name] = true

	t, ok := r.registry.Get(name)
	if !ok || t.Kind != domain.KindDocumentType {
		return 0, fmt.Errorf("%w: %s is not a declared document type", domain.ErrDocumentType, name)
	}

	parentID, err := r.ensure(ctx, t.Parent, visiting)
	if err != nil {
		return 0, err
	}

	ct := &model.ContentType{
		Alias:               t.Name,
		Name:                displayName(t),
		Description:         t.Description,
		Icon:                t.IconOrDefault(),
		Thumbnail:           t.ThumbnailOrDefault(),
		MasterContentTypeID: parentID,
	}
	if err := r.store.ContentTypes.Create(ctx, ct); err != nil {
		return 0, fmt.Errorf("failed to create content type %s: %w", t.Name, err)
	}
	r.ids.Put(t.Name, ct.ID)
	klog.V(6).Infof("已创建内容类型: alias=%s, id=%d, master=%d", t.Name, ct.ID, parentID)
	r.events.publish(ctx, created(eventbus.NodeContentType, t.Name, ct.ID))
	return ct.ID, nil
}

// validate 写入前的全部检查，id 为 0 表示类型尚未安装
func (r *DocumentTypeReconciler) validate(ctx context.Context, t domain.DeclaredType, id int) error {
	if t.HasDefaultTemplateConflict() {
		return domain.DefaultTemplateError(t.DefaultTemplate, t.Name)
	}

	for _, p := range t.Properties {
		tabName := p.TabOrDefault()
		if tabName != domain.DefaultTab {
			if _, ok := r.registry.Tab(tabName); !ok || !r.registry.IsA(tabName, domain.BaseTab) {
				return fmt.Errorf("%w: %s (property %s on %s)", domain.ErrInvalidTab, tabName, p.Alias(), t.Name)
			}
		}

		_, err := r.store.ContentTypes.GetPropertyType(ctx, id, p.Alias())
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up property %s on %s: %w", p.Alias(), t.Name, err)
		}
		if _, err := r.resolveDataType(ctx, r.store, p); err != nil {
			return err
		}
	}
	return nil
}

// resolveDataType 返回属性引用的已安装数据类型 id
// 按名称引用时通过声明的 UniqueID 查找，否则直接使用内置节点 id
func (r *DocumentTypeReconciler) resolveDataType(ctx context.Context, store *repository.Store, p domain.DeclaredProperty) (int, error) {
	if p.DataType != "" {
		declared, ok := r.registry.DataType(p.DataType)
		if !ok {
			return 0, domain.DataTypeNotDeclaredError(p.DataType)
		}
		node, err := store.DataTypes.GetByUniqueID(ctx, declared.UniqueID.String())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, domain.DataTypeNotDeclaredError(p.DataType)
			}
			return 0, fmt.Errorf("failed to look up data type %s: %w", p.DataType, err)
		}
		return node.ID, nil
	}

	if _, err := store.DataTypes.Get(ctx, p.DataTypeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, domain.DataTypeUnknownError(p.DataTypeID)
		}
		return 0, fmt.Errorf("failed to look up data type %d: %w", p.DataTypeID, err)
	}
	return p.DataTypeID, nil
}

// converge 在一个事务内收敛单个文档类型，事件在提交后发布
func (r *DocumentTypeReconciler) converge(ctx context.Context, t domain.DeclaredType) error {
	id, ok := r.ids.ID(t.Name)
	if !ok {
		return nil
	}

	var events []eventbus.SchemaEvent
	err := r.store.Transaction(ctx, func(tx *repository.Store) error {
		events = events[:0]
		ct, err := tx.ContentTypes.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load content type %s: %w", t.Name, err)
		}

		changed := false
		set := func(field *string, value string) {
			if *field != value {
				*field = value
				changed = true
			}
		}
		set(&ct.Name, displayName(t))
		set(&ct.Description, t.Description)
		set(&ct.Icon, t.IconOrDefault())
		set(&ct.Thumbnail, t.ThumbnailOrDefault())

		// 父类型在第一遍中已确保存在，ModelBase 对应 0
		masterID, _ := r.ids.ID(t.Parent)
		if ct.MasterContentTypeID != masterID {
			ct.MasterContentTypeID = masterID
			changed = true
		}

		childrenChanged, err := r.convergeAllowedChildren(ctx, tx, t, id)
		if err != nil {
			return err
		}

		defaultTemplateID, templatesChanged, err := r.convergeTemplates(ctx, tx, t, id)
		if err != nil {
			return err
		}
		if ct.DefaultTemplateID != defaultTemplateID {
			ct.DefaultTemplateID = defaultTemplateID
			changed = true
		}

		for _, p := range t.Properties {
			propertyEvents, err := r.convergeProperty(ctx, tx, id, p)
			if err != nil {
				return fmt.Errorf("property %s on %s: %w", p.Alias(), t.Name, err)
			}
			events = append(events, propertyEvents...)
		}

		if changed {
			if err := tx.ContentTypes.Save(ctx, ct); err != nil {
				return fmt.Errorf("failed to save content type %s: %w", t.Name, err)
			}
		}
		if changed || childrenChanged || templatesChanged {
			events = append(events, updated(eventbus.NodeContentType, t.Name, id))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(events) > 0 {
		klog.V(6).Infof("已收敛内容类型: alias=%s, id=%d, events=%d", t.Name, id, len(events))
	}
	r.events.publish(ctx, events...)
	return nil
}

// convergeAllowedChildren 未安装的子类型被忽略
func (r *DocumentTypeReconciler) convergeAllowedChildren(ctx context.Context, tx *repository.Store, t domain.DeclaredType, id int) (bool, error) {
	want := make([]int, 0, len(t.AllowedChildren))
	for _, name := range t.AllowedChildren {
		if childID, ok := r.ids.ID(name); ok && !slices.Contains(want, childID) {
			want = append(want, childID)
		}
	}
	current, err := tx.ContentTypes.GetAllowedChildIDs(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load allowed children of %s: %w", t.Name, err)
	}
	if slices.Equal(current, want) {
		return false, nil
	}
	if err := tx.ContentTypes.SetAllowedChildIDs(ctx, id, want); err != nil {
		return false, fmt.Errorf("failed to set allowed children of %s: %w", t.Name, err)
	}
	return true, nil
}

// convergeTemplates 写入允许模板列表，返回默认模板 id
func (r *DocumentTypeReconciler) convergeTemplates(ctx context.Context, tx *repository.Store, t domain.DeclaredType, id int) (int, bool, error) {
	want := make([]int, 0, len(t.AllowedTemplates))
	for _, name := range t.AllowedTemplates {
		templateID, ok, err := r.resolveTemplate(ctx, tx, name)
		if err != nil {
			return 0, false, err
		}
		if ok && !slices.Contains(want, templateID) {
			want = append(want, templateID)
		}
	}

	defaultID := 0
	if t.DefaultTemplate != "" {
		templateID, ok, err := r.resolveTemplate(ctx, tx, t.DefaultTemplate)
		if err != nil {
			return 0, false, err
		}
		if ok {
			defaultID = templateID
			if !slices.Contains(want, templateID) {
				want = append(want, templateID)
			}
		}
	}
	slices.Sort(want)

	current, err := tx.ContentTypes.GetAllowedTemplateIDs(ctx, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load allowed templates of %s: %w", t.Name, err)
	}
	if slices.Equal(current, want) {
		return defaultID, false, nil
	}
	if err := tx.ContentTypes.SetAllowedTemplateIDs(ctx, id, want); err != nil {
		return 0, false, fmt.Errorf("failed to set allowed templates of %s: %w", t.Name, err)
	}
	return defaultID, true, nil
}

func (r *DocumentTypeReconciler) resolveTemplate(ctx context.Context, tx *repository.Store, name string) (int, bool, error) {
	if r.templates != nil {
		if id, ok := r.templates.TemplateID(name); ok {
			return id, true, nil
		}
	}
	return lookupTemplate(ctx, tx, name)
}

// convergeProperty 属性不存在时创建，存在时更新除数据类型外的字段
// 返回属性及其标签页产生的事件
func (r *DocumentTypeReconciler) convergeProperty(ctx context.Context, tx *repository.Store, contentTypeID int, p domain.DeclaredProperty) ([]eventbus.SchemaEvent, error) {
	alias := p.Alias()
	name := p.Name
	if name == "" {
		name = p.Member
	}

	tabID, events, err := r.ensureTab(ctx, tx, contentTypeID, p.TabOrDefault())
	if err != nil {
		return nil, err
	}

	existing, err := tx.ContentTypes.GetPropertyType(ctx, contentTypeID, alias)
	if errors.Is(err, repository.ErrNotFound) {
		dataTypeID, err := r.resolveDataType(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		propertyType := &model.PropertyType{
			ContentTypeID:    contentTypeID,
			Alias:            alias,
			DataTypeID:       dataTypeID,
			Name:             name,
			Description:      p.Description,
			Mandatory:        p.Mandatory,
			ValidationRegExp: p.Validation,
			SortOrder:        p.SortOrder,
			TabID:            tabID,
		}
		if err := tx.ContentTypes.AddPropertyType(ctx, propertyType); err != nil {
			return nil, err
		}
		return append(events, created(eventbus.NodePropertyType, alias, propertyType.ID)), nil
	}
	if err != nil {
		return nil, err
	}

	if existing.Name == name &&
		existing.Description == p.Description &&
		existing.Mandatory == p.Mandatory &&
		existing.ValidationRegExp == p.Validation &&
		existing.SortOrder == p.SortOrder &&
		existing.TabID == tabID {
		return events, nil
	}
	existing.Name = name
	existing.Description = p.Description
	existing.Mandatory = p.Mandatory
	existing.ValidationRegExp = p.Validation
	existing.SortOrder = p.SortOrder
	existing.TabID = tabID
	if err := tx.ContentTypes.SavePropertyType(ctx, existing); err != nil {
		return nil, err
	}
	return append(events, updated(eventbus.NodePropertyType, alias, existing.ID)), nil
}

// ensureTab 返回标签页 id 和标签页变化产生的事件，默认标签页固定为 0
// 其他标签页按标题查找，不存在时创建
func (r *DocumentTypeReconciler) ensureTab(ctx context.Context, tx *repository.Store, contentTypeID int, tabName string) (int, []eventbus.SchemaEvent, error) {
	if tabName == domain.DefaultTab {
		return 0, nil, nil
	}
	declared, ok := r.registry.Tab(tabName)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s", domain.ErrInvalidTab, tabName)
	}

	tabs, err := tx.ContentTypes.GetTabs(ctx, contentTypeID)
	if err != nil {
		return 0, nil, err
	}
	var tab *model.Tab
	for i := range tabs {
		if strings.EqualFold(tabs[i].Caption, declared.Caption) {
			tab = &tabs[i]
			break
		}
	}

	var events []eventbus.SchemaEvent
	if tab == nil {
		id, err := tx.ContentTypes.AddTab(ctx, contentTypeID, declared.Caption)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to add tab %s: %w", declared.Caption, err)
		}
		tab = &model.Tab{ID: id, ContentTypeID: contentTypeID, Caption: declared.Caption}
		klog.V(6).Infof("已创建标签页: contentType=%d, caption=%s, id=%d", contentTypeID, declared.Caption, id)
		events = append(events, created(eventbus.NodeTab, declared.Name, id))
	}

	changed := false
	if tab.Caption != declared.Caption {
		if err := tx.ContentTypes.SetTabCaption(ctx, tab.ID, declared.Caption); err != nil {
			return 0, nil, err
		}
		changed = true
	}
	if tab.SortOrder != declared.SortOrder {
		if err := tx.ContentTypes.SetTabSortOrder(ctx, tab.ID, declared.SortOrder); err != nil {
			return 0, nil, err
		}
		changed = true
	}
	// 新建的标签页只记一次创建事件
	if changed && len(events) == 0 {
		events = append(events, updated(eventbus.NodeTab, declared.Name, tab.ID))
	}
	return tab.ID, events, nil
}
