package modelfactory

import (
	"fmt"
	"time"
)

// Node 运行时内容节点的只读视图，一个节点对应内容的某个版本
type Node struct {
	ID         int
	Alias      string // 内容类型 alias
	Name       string
	ParentID   int
	SortOrder  int
	TemplateID int
	Version    string
	Properties map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Model 所有模型的公共接口
type Model interface {
	Node() *Node
	ID() int
	Alias() string
}

// Constructor 根据节点创建具体模型
type Constructor func(node *Node) (Model, error)

// BaseModel 未映射到具体类型时使用的通用模型，具体模型可嵌入它
type BaseModel struct {
	node *Node
}

func NewBaseModel(node *Node) *BaseModel {
	return &BaseModel{node: node}
}

func (m *BaseModel) Node() *Node {
	return m.node
}

func (m *BaseModel) ID() int {
	return m.node.ID
}

func (m *BaseModel) Alias() string {
	return m.node.Alias
}

func (m *BaseModel) Name() string {
	return m.node.Name
}

// Property 读取属性值
func (m *BaseModel) Property(alias string) (any, bool) {
	if m.node.Properties == nil {
		return nil, false
	}
	v, ok := m.node.Properties[alias]
	return v, ok
}

// SetProperty 仅修改已存在的属性，返回是否修改
func (m *BaseModel) SetProperty(alias string, value any) bool {
	if _, ok := m.Property(alias); !ok {
		return false
	}
	m.node.Properties[alias] = value
	return true
}

func (m *BaseModel) String() string {
	return fmt.Sprintf("ID: %d, Name: %s, Type: %s", m.node.ID, m.node.Name, m.node.Alias)
}

// PropertyValue 按类型读取属性，类型不符时返回零值
func PropertyValue[T any](m Model, alias string) (T, bool) {
	var zero T
	node := m.Node()
	if node == nil || node.Properties == nil {
		return zero, false
	}
	v, ok := node.Properties[alias].(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// As 将模型转换为具体类型
func As[T Model](m Model) (T, bool) {
	typed, ok := m.(T)
	return typed, ok
}
