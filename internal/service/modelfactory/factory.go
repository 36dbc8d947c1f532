package modelfactory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/opencodefirst/codefirst/config"
	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// Factory 根据内容类型 alias 创建对应的模型
// alias 映射在首次使用时构建一次，之后不再变化
type Factory struct {
	registry registry.Registry
	contents repository.ContentRepository
	cfg      config.ModelFactoryConfig

	mutex        sync.Mutex
	constructors map[string]Constructor

	once     sync.Once
	models   map[string]Constructor
	buildErr error
}

func New(reg registry.Registry, contents repository.ContentRepository, cfg config.ModelFactoryConfig) *Factory {
	return &Factory{
		registry:     reg,
		contents:     contents,
		cfg:          cfg,
		constructors: make(map[string]Constructor),
	}
}

// Register 登记类型名对应的构造函数，需在首次解析前调用
func (f *Factory) Register(typeName string, constructor Constructor) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.constructors[typeName] = constructor
}

// Init 构建 alias 映射，返回配置错误
func (f *Factory) Init() error {
	f.once.Do(func() {
		f.models, f.buildErr = f.build()
	})
	return f.buildErr
}

// build 先按声明的文档类型建立映射，再用配置中的映射覆盖
func (f *Factory) build() (map[string]Constructor, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	models := make(map[string]Constructor)
	for _, t := range f.registry.Discover(domain.KindDocumentType) {
		if constructor, ok := f.constructors[t.Name]; ok {
			models[t.Name] = constructor
		}
	}

	if !f.cfg.Enabled {
		return models, nil
	}
	for _, m := range f.cfg.Mappings {
		constructor, ok := f.constructors[m.Type]
		if !ok {
			return models, fmt.Errorf("%w: %s (alias %s)", domain.ErrTypeLoad, m.Type, m.Alias)
		}
		models[m.Alias] = constructor
	}
	klog.V(6).Infof("模型映射构建完成: count=%d", len(models))
	return models, nil
}

// Lookup 返回 alias 对应的构造函数
func (f *Factory) Lookup(alias string) (Constructor, bool) {
	if err := f.Init(); err != nil {
		klog.V(6).Infof("模型映射存在配置错误: %v", err)
	}
	constructor, ok := f.models[alias]
	return constructor, ok
}

// Resolve 创建节点对应的模型
// 未映射、构造失败或构造函数 panic 时都返回 BaseModel
func (f *Factory) Resolve(node *Node) (Model, error) {
	if node == nil {
		return nil, domain.ErrModelNotFound
	}
	constructor, ok := f.Lookup(node.Alias)
	if !ok {
		return NewBaseModel(node), nil
	}
	return construct(constructor, node), nil
}

func construct(constructor Constructor, node *Node) (m Model) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("[modelfactory.Resolve] 构造模型异常: alias=%s, id=%d, panic=%v", node.Alias, node.ID, r)
			m = NewBaseModel(node)
		}
	}()
	m, err := constructor(node)
	if err != nil || m == nil {
		klog.V(6).Infof("构造模型失败，使用基础模型: alias=%s, id=%d, error=%v", node.Alias, node.ID, err)
		return NewBaseModel(node)
	}
	return m
}

// Get 加载内容的最新版本并创建模型
func (f *Factory) Get(ctx context.Context, id int) (Model, error) {
	return f.FromDatabase(ctx, id, nil)
}

// FromDatabase 从数据库加载内容并创建模型，version 为 nil 时使用最新版本
func (f *Factory) FromDatabase(ctx context.Context, id int, version *uuid.UUID) (Model, error) {
	if id <= 0 {
		return nil, domain.ErrModelNotFound
	}
	content, err := f.contents.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load content %d: %w", id, err)
	}

	var contentVersion *model.ContentVersion
	if version != nil {
		contentVersion, err = f.contents.GetVersion(ctx, id, version.String())
	} else {
		contentVersion, err = f.contents.GetNewestVersion(ctx, id)
		// 没有任何版本的内容仍可解析，只是没有属性
		if errors.Is(err, repository.ErrNotFound) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load version of content %d: %w", id, err)
	}

	return f.Resolve(NewNode(content, contentVersion))
}

// NewNode 由内容行和版本行组装节点
func NewNode(content *model.Content, version *model.ContentVersion) *Node {
	node := &Node{
		ID:         content.ID,
		Alias:      content.ContentTypeAlias,
		Name:       content.Name,
		ParentID:   content.ParentID,
		SortOrder:  content.SortOrder,
		TemplateID: content.TemplateID,
		Properties: make(map[string]any),
		CreatedAt:  content.CreatedAt,
		UpdatedAt:  content.UpdatedAt,
	}
	if version != nil {
		node.Version = version.VersionID
		if version.Name != "" {
			node.Name = version.Name
		}
		for k, v := range version.Properties {
			node.Properties[k] = v
		}
	}
	return node
}
