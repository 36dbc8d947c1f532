package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/opencodefirst/codefirst/internal/domain"
)

// Registry 声明模型注册中心
// 所有声明（模板、文档类型、标签页、数据类型、宏参数类型）共享同一个名称空间，
// 名称同时是与已安装节点关联的 alias。
type Registry interface {
	// RegisterType 注册模板或文档类型
	// 同名声明已存在时返回 domain.ErrDuplicateType
	RegisterType(t domain.DeclaredType) error

	// RegisterTab 注册标签页
	RegisterTab(tab domain.DeclaredTab) error

	// RegisterDataType 注册自定义数据类型
	RegisterDataType(dataType domain.DeclaredDataType) error

	// RegisterMacroPropertyType 注册宏参数类型
	RegisterMacroPropertyType(m domain.DeclaredMacroPropertyType) error

	// Discover 返回指定种类的全部声明，按名称排序
	Discover(kind domain.Kind) []domain.DeclaredType

	// Get 按名称获取模板或文档类型
	Get(name string) (domain.DeclaredType, bool)

	// Tab 按名称获取标签页，内置的默认标签页总是存在
	Tab(name string) (domain.DeclaredTab, bool)

	// DataType 按名称获取自定义数据类型
	DataType(name string) (domain.DeclaredDataType, bool)

	DataTypes() []domain.DeclaredDataType
	MacroPropertyTypes() []domain.DeclaredMacroPropertyType

	// IsA 判断 name 的继承链是否到达 base
	IsA(name, base string) bool
}

// builtinParents 内置类型及其父类型，构成各继承链的终点
var builtinParents = map[string]string{
	domain.BaseModelType: "",
	domain.BaseTemplate:  "",
	domain.BaseTab:       "",
	domain.DefaultTab:    domain.BaseTab,
}

type registry struct {
	mu         sync.RWMutex
	types      map[string]domain.DeclaredType
	tabs       map[string]domain.DeclaredTab
	dataTypes  map[string]domain.DeclaredDataType
	macroTypes map[string]domain.DeclaredMacroPropertyType
}

// New 创建新的 Registry 实例
func New() Registry {
	return &registry{
		types:      make(map[string]domain.DeclaredType),
		tabs:       make(map[string]domain.DeclaredTab),
		dataTypes:  make(map[string]domain.DeclaredDataType),
		macroTypes: make(map[string]domain.DeclaredMacroPropertyType),
	}
}

// existsLocked 名称是否已被任何声明或内置类型占用，调用方需持有锁
func (r *registry) existsLocked(name string) bool {
	if _, ok := builtinParents[name]; ok {
		return true
	}
	if _, ok := r.types[name]; ok {
		return true
	}
	if _, ok := r.tabs[name]; ok {
		return true
	}
	if _, ok := r.dataTypes[name]; ok {
		return true
	}
	_, ok := r.macroTypes[name]
	return ok
}

// baseOf 未声明父类型时使用的内置基类
func baseOf(kind domain.Kind) string {
	if kind == domain.KindTemplate {
		return domain.BaseTemplate
	}
	return domain.BaseModelType
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("declaration name cannot be empty")
	}
	return nil
}

// validateProperties 属性 alias 在类型内必须唯一，Title 和 title 会得到同一个 alias
func validateProperties(t domain.DeclaredType) error {
	seen := make(map[string]string, len(t.Properties))
	for _, p := range t.Properties {
		alias := p.Alias()
		if alias == "" {
			return fmt.Errorf("%w: property on %s has an empty member name", domain.ErrConfiguration, t.Name)
		}
		if member, ok := seen[alias]; ok {
			return fmt.Errorf("%w: properties %s and %s on %s share alias %q", domain.ErrDuplicateType, member, p.Member, t.Name, alias)
		}
		seen[alias] = p.Member
		if p.DataType != "" && p.DataTypeID != 0 {
			return fmt.Errorf("%w: property %s on %s sets both data_type and data_type_id", domain.ErrConfiguration, p.Member, t.Name)
		}
	}
	return nil
}

func (r *registry) RegisterType(t domain.DeclaredType) error {
	if err := validateName(t.Name); err != nil {
		return err
	}
	if t.Kind != domain.KindTemplate && t.Kind != domain.KindDocumentType {
		return fmt.Errorf("type %q has unsupported kind %q", t.Name, t.Kind)
	}

	if err := validateProperties(t); err != nil {
		return err
	}

	if t.Parent == "" {
		t.Parent = baseOf(t.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsLocked(t.Name) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateType, t.Name)
	}
	r.types[t.Name] = t
	return nil
}

func (r *registry) RegisterTab(tab domain.DeclaredTab) error {
	if err := validateName(tab.Name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tab.Parent == "" {
		tab.Parent = domain.BaseTab
	}
	if r.existsLocked(tab.Name) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateType, tab.Name)
	}
	if tab.Caption == "" {
		tab.Caption = tab.Name
	}
	r.tabs[tab.Name] = tab
	return nil
}

func (r *registry) RegisterDataType(dataType domain.DeclaredDataType) error {
	if err := validateName(dataType.Name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsLocked(dataType.Name) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateType, dataType.Name)
	}
	r.dataTypes[dataType.Name] = dataType
	return nil
}

func (r *registry) RegisterMacroPropertyType(m domain.DeclaredMacroPropertyType) error {
	if err := validateName(m.Name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsLocked(m.Name) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateType, m.Name)
	}
	if m.Alias == "" {
		m.Alias = m.Name
	}
	r.macroTypes[m.Name] = m
	return nil
}

func (r *registry) Discover(kind domain.Kind) []domain.DeclaredType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DeclaredType, 0)
	for _, t := range r.types {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *registry) Get(name string) (domain.DeclaredType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

func (r *registry) Tab(name string) (domain.DeclaredTab, bool) {
	if name == domain.DefaultTab {
		return domain.DeclaredTab{
			Name:    domain.DefaultTab,
			Parent:  domain.BaseTab,
			Caption: domain.DefaultTabCaption,
		}, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tab, ok := r.tabs[name]
	return tab, ok
}

func (r *registry) DataType(name string) (domain.DeclaredDataType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dataType, ok := r.dataTypes[name]
	return dataType, ok
}

func (r *registry) DataTypes() []domain.DeclaredDataType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DeclaredDataType, 0, len(r.dataTypes))
	for _, dataType := range r.dataTypes {
		out = append(out, dataType)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *registry) MacroPropertyTypes() []domain.DeclaredMacroPropertyType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DeclaredMacroPropertyType, 0, len(r.macroTypes))
	for _, m := range r.macroTypes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *registry) IsA(name, base string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// 限制步数，防止声明中出现环
	limit := len(r.types) + len(r.tabs) + len(builtinParents) + 1
	current := name
	for i := 0; i < limit; i++ {
		if current == base {
			return true
		}
		parent, ok := r.parentLocked(current)
		if !ok || parent == "" {
			return false
		}
		current = parent
	}
	return false
}

// parentLocked 查找父类型名，调用方需持有读锁
func (r *registry) parentLocked(name string) (string, bool) {
	if parent, ok := builtinParents[name]; ok {
		return parent, true
	}
	if t, ok := r.types[name]; ok {
		return t.Parent, true
	}
	if tab, ok := r.tabs[name]; ok {
		return tab.Parent, true
	}
	return "", false
}
