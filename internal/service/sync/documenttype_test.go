package syncservice

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/eventbus"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synchronizeDocumentTypes(t *testing.T, reg registry.Registry, store *repository.Store) error {
	t.Helper()
	ctx := context.Background()
	templates := NewTemplateReconciler(reg, store, nil)
	require.NoError(t, templates.Synchronize(ctx))
	return NewDocumentTypeReconciler(reg, store, templates, nil).Synchronize(ctx)
}

func TestDocumentTypeParentCreatedFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := registry.New()
	// 名称顺序与继承顺序相反
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "Alpha", Parent: "Beta", Kind: domain.KindDocumentType}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "Beta", Parent: "Zeta", Kind: domain.KindDocumentType}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "Zeta", Kind: domain.KindDocumentType}))

	require.NoError(t, synchronizeDocumentTypes(t, reg, store))

	zeta, err := store.ContentTypes.GetByAlias(ctx, "Zeta")
	require.NoError(t, err)
	beta, err := store.ContentTypes.GetByAlias(ctx, "Beta")
	require.NoError(t, err)
	alpha, err := store.ContentTypes.GetByAlias(ctx, "Alpha")
	require.NoError(t, err)

	assert.Less(t, zeta.ID, beta.ID, "父类型应先创建")
	assert.Less(t, beta.ID, alpha.ID, "父类型应先创建")
	assert.Equal(t, 0, zeta.MasterContentTypeID)
	assert.Equal(t, zeta.ID, beta.MasterContentTypeID)
	assert.Equal(t, beta.ID, alpha.MasterContentTypeID)
}

func TestDocumentTypeStaticAttributes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := sampleRegistry(t)
	require.NoError(t, NewDataTypeReconciler(reg, store, nil).Synchronize(ctx))
	require.NoError(t, synchronizeDocumentTypes(t, reg, store))

	page, err := store.ContentTypes.GetByAlias(ctx, "Page")
	require.NoError(t, err)
	assert.Equal(t, "Page", page.Name)
	assert.Equal(t, "普通页面", page.Description)
	assert.Equal(t, domain.DefaultIcon, page.Icon)
	assert.Equal(t, domain.DefaultThumbnail, page.Thumbnail)

	textPage, err := store.Templates.GetByAlias(ctx, "TextPage")
	require.NoError(t, err)
	assert.Equal(t, textPage.ID, page.DefaultTemplateID)
	templateIDs, err := store.ContentTypes.GetAllowedTemplateIDs(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{textPage.ID}, templateIDs)

	news, err := store.ContentTypes.GetByAlias(ctx, "NewsItem")
	require.NoError(t, err)
	assert.Equal(t, "news.gif", news.Icon)
	assert.Equal(t, page.ID, news.MasterContentTypeID)
}

func TestDocumentTypeAllowedChildrenDropsUnknown(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := sampleRegistry(t)
	require.NoError(t, synchronizeDocumentTypes(t, reg, store))

	children, err := store.ContentTypes.GetAllowedChildIDs(ctx, contentTypeID(t, store, "Home"))
	require.NoError(t, err)
	assert.Equal(t, []int{contentTypeID(t, store, "Page"), contentTypeID(t, store, "NewsItem")}, children,
		"未安装的子类型应被忽略")
}

func TestDocumentTypeDefaultTemplateConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := registry.New()
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "T", Kind: domain.KindTemplate}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "U", Kind: domain.KindTemplate}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name:             "Article",
		Kind:             domain.KindDocumentType,
		DefaultTemplate:  "T",
		AllowedTemplates: []string{"U"},
	}))

	err := synchronizeDocumentTypes(t, reg, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDefaultTemplate))
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	_, err = store.ContentTypes.GetByAlias(ctx, "Article")
	assert.True(t, errors.Is(err, repository.ErrNotFound), "校验失败的类型不应被创建")
}

func TestDocumentTypeUnknownDataType(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := registry.New()
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name: "Broken",
		Kind: domain.KindDocumentType,
		Properties: []domain.DeclaredProperty{
			{Member: "Value", DataTypeID: 9999},
		},
	}))

	err := synchronizeDocumentTypes(t, reg, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataTypeUnknown))
	assert.Contains(t, err.Error(), "9999")

	contentTypes, err := store.ContentTypes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, contentTypes)
}

func TestDocumentTypeInvalidTab(t *testing.T) {
	store := newTestStore(t)
	reg := registry.New()
	require.NoError(t, reg.RegisterTab(domain.DeclaredTab{Name: "NotATab", Parent: domain.BaseModelType}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name: "Page",
		Kind: domain.KindDocumentType,
		Properties: []domain.DeclaredProperty{
			{Member: "Title", DataTypeID: domain.DataTypeTextstring, Tab: "NotATab"},
		},
	}))

	err := synchronizeDocumentTypes(t, reg, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTab))

	reg = registry.New()
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name: "Page",
		Kind: domain.KindDocumentType,
		Properties: []domain.DeclaredProperty{
			{Member: "Title", DataTypeID: domain.DataTypeTextstring, Tab: "Undeclared"},
		},
	}))
	err = synchronizeDocumentTypes(t, reg, store)
	assert.True(t, errors.Is(err, domain.ErrInvalidTab))
}

func TestDocumentTypeMustInheritModelBase(t *testing.T) {
	store := newTestStore(t)
	reg := registry.New()
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "Orphan", Parent: "Nowhere", Kind: domain.KindDocumentType}))

	err := synchronizeDocumentTypes(t, reg, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDocumentType))
}

func TestDocumentTypePropertyCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	declare := func(description string, dataTypeID int) registry.Registry {
		reg := registry.New()
		require.NoError(t, reg.RegisterType(domain.DeclaredType{
			Name: "Page",
			Kind: domain.KindDocumentType,
			Properties: []domain.DeclaredProperty{
				{Member: "Title", DataTypeID: dataTypeID, Mandatory: true, SortOrder: 3, Description: description},
			},
		}))
		return reg
	}

	require.NoError(t, synchronizeDocumentTypes(t, declare("旧描述", domain.DataTypeTextstring), store))
	pageID := contentTypeID(t, store, "Page")
	first, err := store.ContentTypes.GetPropertyType(ctx, pageID, "title")
	require.NoError(t, err)
	assert.Equal(t, domain.DataTypeTextstring, first.DataTypeID)
	assert.Equal(t, "Title", first.Name, "未声明名称时使用成员名")
	assert.True(t, first.Mandatory)
	assert.Equal(t, 3, first.SortOrder)
	assert.Equal(t, "旧描述", first.Description)

	// 数据类型在创建后不可修改
	require.NoError(t, synchronizeDocumentTypes(t, declare("新描述", domain.DataTypeTextboxMultiple), store))
	second, err := store.ContentTypes.GetPropertyType(ctx, pageID, "title")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "title", second.Alias)
	assert.Equal(t, domain.DataTypeTextstring, second.DataTypeID)
	assert.Equal(t, "新描述", second.Description)

	properties, err := store.ContentTypes.GetPropertyTypes(ctx, pageID)
	require.NoError(t, err)
	assert.Len(t, properties, 1)
}

func TestDocumentTypeTabMapping(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := sampleRegistry(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, synchronizeDocumentTypes(t, reg, store))
	}

	pageID := contentTypeID(t, store, "Page")
	tabs, err := store.ContentTypes.GetTabs(ctx, pageID)
	require.NoError(t, err)
	require.Len(t, tabs, 1, "多个属性引用同一标签页时只应创建一个")
	assert.Equal(t, "Content", tabs[0].Caption)
	assert.Equal(t, 1, tabs[0].SortOrder)

	title, err := store.ContentTypes.GetPropertyType(ctx, pageID, "title")
	require.NoError(t, err)
	assert.Equal(t, tabs[0].ID, title.TabID)
	body, err := store.ContentTypes.GetPropertyType(ctx, pageID, "bodyText")
	require.NoError(t, err)
	assert.Equal(t, tabs[0].ID, body.TabID)
	hide, err := store.ContentTypes.GetPropertyType(ctx, pageID, "hideInNav")
	require.NoError(t, err)
	assert.Equal(t, 0, hide.TabID, "默认标签页映射为 0")
}

func TestDocumentTypeOnlyOwnProperties(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := sampleRegistry(t)
	require.NoError(t, synchronizeDocumentTypes(t, reg, store))

	properties, err := store.ContentTypes.GetPropertyTypes(ctx, contentTypeID(t, store, "NewsItem"))
	require.NoError(t, err)
	require.Len(t, properties, 1, "父类型的属性不应在子类型上重复创建")
	assert.Equal(t, "publishDate", properties[0].Alias)
}

func TestDocumentTypeAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, synchronizeDocumentTypes(t, sampleRegistry(t), store))
	news, err := store.ContentTypes.GetByAlias(ctx, "NewsItem")
	require.NoError(t, err)

	reg := registry.New()
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "Page", Kind: domain.KindDocumentType, Description: "普通页面"}))
	require.NoError(t, synchronizeDocumentTypes(t, reg, store))

	after, err := store.ContentTypes.GetByAlias(ctx, "NewsItem")
	require.NoError(t, err, "移除声明后已安装的节点应保留")
	assert.Equal(t, news.ID, after.ID)
	assert.Equal(t, news.Name, after.Name)
}

func TestDocumentTypePropertyReferencesDeclaredDataType(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := registry.New()
	colorID := uuid.MustParse("3f0c2a6e-5a55-4c1a-9a51-0c0107c0ffee")
	// NodeID 为 0，安装时才分配 id
	require.NoError(t, reg.RegisterDataType(domain.DeclaredDataType{
		Name:     "Color",
		UniqueID: colorID,
		EditorID: uuid.MustParse("3f0c2a6e-5a55-4c1a-9a51-0c0107c0ed17"),
		DBType:   domain.DBTypeNvarchar,
	}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name: "Page",
		Kind: domain.KindDocumentType,
		Properties: []domain.DeclaredProperty{
			{Member: "Accent", DataType: "Color"},
		},
	}))

	require.NoError(t, NewDataTypeReconciler(reg, store, nil).Synchronize(ctx))
	require.NoError(t, synchronizeDocumentTypes(t, reg, store))

	node, err := store.DataTypes.GetByUniqueID(ctx, colorID.String())
	require.NoError(t, err)
	accent, err := store.ContentTypes.GetPropertyType(ctx, contentTypeID(t, store, "Page"), "accent")
	require.NoError(t, err)
	assert.Equal(t, node.ID, accent.DataTypeID, "按名称引用应解析为安装时分配的 id")
}

func TestDocumentTypeUnknownDataTypeName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := registry.New()
	require.NoError(t, reg.RegisterDataType(domain.DeclaredDataType{Name: "Color", UniqueID: uuid.New(), EditorID: uuid.New()}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name:       "Page",
		Kind:       domain.KindDocumentType,
		Properties: []domain.DeclaredProperty{{Member: "Accent", DataType: "Color"}},
	}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name:       "Article",
		Kind:       domain.KindDocumentType,
		Properties: []domain.DeclaredProperty{{Member: "Mood", DataType: "Undeclared"}},
	}))

	// Color 已声明但尚未安装，Undeclared 未声明，两者都不能通过校验
	err := synchronizeDocumentTypes(t, reg, store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataTypeUnknown))

	contentTypes, err := store.ContentTypes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, contentTypes, "校验失败时不应写入")
}

func TestDocumentTypeReparentConvergesMaster(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	declare := func(parent string) registry.Registry {
		reg := registry.New()
		require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "A", Kind: domain.KindDocumentType}))
		require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "C", Kind: domain.KindDocumentType}))
		require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "B", Parent: parent, Kind: domain.KindDocumentType}))
		return reg
	}

	require.NoError(t, synchronizeDocumentTypes(t, declare("A"), store))
	b, err := store.ContentTypes.GetByAlias(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, contentTypeID(t, store, "A"), b.MasterContentTypeID)

	require.NoError(t, synchronizeDocumentTypes(t, declare("C"), store))
	b, err = store.ContentTypes.GetByAlias(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, contentTypeID(t, store, "C"), b.MasterContentTypeID, "更换父类型后应指向新的父类型")

	require.NoError(t, synchronizeDocumentTypes(t, declare(""), store))
	b, err = store.ContentTypes.GetByAlias(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 0, b.MasterContentTypeID, "直接继承 ModelBase 时没有父类型")
}

func TestDocumentTypeDescriptionConverges(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	declare := func(description string) registry.Registry {
		reg := registry.New()
		require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "Page", Kind: domain.KindDocumentType, Description: description}))
		return reg
	}

	require.NoError(t, synchronizeDocumentTypes(t, declare("旧描述"), store))
	require.NoError(t, synchronizeDocumentTypes(t, declare("新描述"), store))

	page, err := store.ContentTypes.GetByAlias(ctx, "Page")
	require.NoError(t, err)
	assert.Equal(t, "新描述", page.Description)
}

func TestDocumentTypePublishesTabEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reg := sampleRegistry(t)
	bus := eventbus.NewSchemaEventBus()

	var tabEvents []eventbus.SchemaEvent
	record := func(ctx context.Context, event eventbus.SchemaEvent) error {
		if event.Node == eventbus.NodeTab {
			tabEvents = append(tabEvents, event)
		}
		return nil
	}
	bus.Subscribe(eventbus.SchemaNodeCreated, record)
	bus.Subscribe(eventbus.SchemaNodeUpdated, record)

	synchronize := func() {
		templates := NewTemplateReconciler(reg, store, nil)
		require.NoError(t, templates.Synchronize(ctx))
		require.NoError(t, NewDocumentTypeReconciler(reg, store, templates, bus).Synchronize(ctx))
	}

	synchronize()
	require.Len(t, tabEvents, 1, "两个属性共用的标签页只产生一次创建事件")
	assert.Equal(t, eventbus.SchemaNodeCreated, tabEvents[0].Type)
	assert.Equal(t, "ContentTab", tabEvents[0].Alias)

	tabs, err := store.ContentTypes.GetTabs(ctx, contentTypeID(t, store, "Page"))
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, tabs[0].ID, tabEvents[0].ID)

	tabEvents = nil
	synchronize()
	assert.Empty(t, tabEvents, "标签页未变化时不产生事件")
}
