package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Kind 声明类型的种类
type Kind string

const (
	KindTemplate          Kind = "Template"
	KindDocumentType      Kind = "DocumentType"
	KindDataType          Kind = "DataType"
	KindTab               Kind = "Tab"
	KindMacroPropertyType Kind = "MacroPropertyType"
)

// 内置基类名称，继承链必须终止于对应的基类
const (
	BaseModelType = "ModelBase"  // 文档类型的通用基类，不对应任何内容类型节点
	BaseTemplate  = "MasterPage" // 模板的基类
	BaseTab       = "Tab"        // 标签页的基类
	DefaultTab    = "DefaultTab" // 保留的默认标签页，总是映射到 tab id 0
)

const (
	DefaultIcon      = "folder.gif"
	DefaultThumbnail = "folder.png"

	DefaultTabCaption = "Generic Properties"
)

// DeclaredType 一个静态声明的模型类型（模板或文档类型）
// Name 是唯一标识，同时也是已安装节点的 alias
type DeclaredType struct {
	Name   string `yaml:"name" json:"name"`
	Parent string `yaml:"parent" json:"parent"` // 继承的父类型名
	Kind   Kind   `yaml:"kind" json:"kind"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Thumbnail   string `yaml:"thumbnail" json:"thumbnail"`

	AllowedChildren  []string `yaml:"allowed_children" json:"allowed_children"`
	AllowedTemplates []string `yaml:"allowed_templates" json:"allowed_templates"`
	DefaultTemplate  string   `yaml:"default_template" json:"default_template"`

	// 仅模板使用
	MasterTemplate string `yaml:"master_template" json:"master_template"`

	// 只包含本类型自己声明的属性，父类型的属性不会重复出现
	Properties []DeclaredProperty `yaml:"properties" json:"properties"`
}

// IconOrDefault 返回图标，未声明时使用默认值
func (t DeclaredType) IconOrDefault() string {
	if t.Icon == "" {
		return DefaultIcon
	}
	return t.Icon
}

// ThumbnailOrDefault 返回缩略图，未声明时使用默认值
func (t DeclaredType) ThumbnailOrDefault() string {
	if t.Thumbnail == "" {
		return DefaultThumbnail
	}
	return t.Thumbnail
}

// HasDefaultTemplateConflict 默认模板不在允许模板列表中
// 允许模板列表为空时不做限制
func (t DeclaredType) HasDefaultTemplateConflict() bool {
	if t.DefaultTemplate == "" || len(t.AllowedTemplates) == 0 {
		return false
	}
	for _, name := range t.AllowedTemplates {
		if name == t.DefaultTemplate {
			return false
		}
	}
	return true
}

// DeclaredProperty 文档类型上声明的属性
type DeclaredProperty struct {
	Member      string `yaml:"member" json:"member"` // 成员名，alias 由它推导
	Name        string `yaml:"name" json:"name"`
	DataType    string `yaml:"data_type" json:"data_type"`       // 引用声明的数据类型，按 UniqueID 解析为已安装 id
	DataTypeID  int    `yaml:"data_type_id" json:"data_type_id"` // 直接引用内置数据类型的节点 id
	Tab         string `yaml:"tab" json:"tab"`
	Mandatory   bool   `yaml:"mandatory" json:"mandatory"`
	Validation  string `yaml:"validation" json:"validation"`
	Description string `yaml:"description" json:"description"`
	SortOrder   int    `yaml:"sort_order" json:"sort_order"`
}

// Alias 属性别名：成员名首字母小写
func (p DeclaredProperty) Alias() string {
	return FormatPropertyAlias(p.Member)
}

// TabOrDefault 返回所属标签页，未声明时为默认标签页
func (p DeclaredProperty) TabOrDefault() string {
	if p.Tab == "" {
		return DefaultTab
	}
	return p.Tab
}

// FormatPropertyAlias 将首字母转为小写
func FormatPropertyAlias(alias string) string {
	alias = strings.TrimSpace(alias)
	if utf8.RuneCountInString(alias) <= 1 {
		return alias
	}
	r, size := utf8.DecodeRuneInString(alias)
	return string(unicode.ToLower(r)) + alias[size:]
}

// DeclaredTab 属性分组
type DeclaredTab struct {
	Name      string `yaml:"name" json:"name"`
	Parent    string `yaml:"parent" json:"parent"`
	Caption   string `yaml:"caption" json:"caption"`
	SortOrder int    `yaml:"sort_order" json:"sort_order"`
}

// DBType 数据类型的存储种类
type DBType string

const (
	DBTypeInteger  DBType = "Integer"
	DBTypeDate     DBType = "Date"
	DBTypeNvarchar DBType = "Nvarchar"
	DBTypeNtext    DBType = "Ntext"
)

// Normalize 未知的存储种类按 Ntext 处理
func (t DBType) Normalize() DBType {
	switch strings.ToLower(string(t)) {
	case "integer":
		return DBTypeInteger
	case "date":
		return DBTypeDate
	case "nvarchar":
		return DBTypeNvarchar
	default:
		return DBTypeNtext
	}
}

// DeclaredDataType 自定义数据类型定义（编辑器 + 存储种类）
type DeclaredDataType struct {
	Name     string    `yaml:"name" json:"name"`
	NodeID   int       `yaml:"node_id" json:"node_id"` // 0 表示由数据库分配；负数为保留 id
	UniqueID uuid.UUID `yaml:"unique_id" json:"unique_id"`
	EditorID uuid.UUID `yaml:"editor_id" json:"editor_id"`
	DBType   DBType    `yaml:"db_type" json:"db_type"`
}

// DeclaredMacroPropertyType 宏参数类型注册
type DeclaredMacroPropertyType struct {
	Name     string `yaml:"name" json:"name"`
	Alias    string `yaml:"alias" json:"alias"`
	Assembly string `yaml:"assembly" json:"assembly"`
	TypeName string `yaml:"type_name" json:"type_name"`
}
