package model

import "time"

// Template 模板节点
type Template struct {
	ID               int       `json:"id" gorm:"primaryKey"`
	Alias            string    `json:"alias" gorm:"size:255;uniqueIndex;not null"`
	Name             string    `json:"name" gorm:"size:255;not null;default:''"`
	MasterTemplateID int       `json:"master_template_id" gorm:"default:0"` // 0 表示没有母版
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Template) TableName() string {
	return "cms_templates"
}

// DataTypeObjectType 数据类型节点的对象类型
const DataTypeObjectType = "30A2A501-1978-4DDB-A57B-F7EFED43BA3C"

// DataTypeNode 数据类型定义节点，id 可以由声明指定（包括负数保留 id）
type DataTypeNode struct {
	ID         int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UniqueID   string    `json:"unique_id" gorm:"size:36;uniqueIndex;not null"`
	Text       string    `json:"text" gorm:"size:255;not null;default:''"`
	ObjectType string    `json:"object_type" gorm:"size:36;not null"`
	ParentID   int       `json:"parent_id" gorm:"default:-1"`
	Level      int       `json:"level" gorm:"default:1"`
	Path       string    `json:"path" gorm:"size:255"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	Trashed    bool      `json:"trashed" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (DataTypeNode) TableName() string {
	return "cms_data_type_nodes"
}

// DataTypeEditor 数据类型与编辑器、存储种类的绑定
type DataTypeEditor struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	NodeID    int    `json:"node_id" gorm:"uniqueIndex;not null"`
	ControlID string `json:"control_id" gorm:"size:36;not null"`
	DBType    string `json:"db_type" gorm:"size:50;not null"` // Integer, Date, Nvarchar, Ntext
}

// TableName 指定表名
func (DataTypeEditor) TableName() string {
	return "cms_data_type_editors"
}

// ContentType 内容类型（文档类型）节点
type ContentType struct {
	ID                  int       `json:"id" gorm:"primaryKey"`
	Alias               string    `json:"alias" gorm:"size:255;uniqueIndex;not null"`
	Name                string    `json:"name" gorm:"size:255;not null;default:''"`
	Description         string    `json:"description" gorm:"size:1000"`
	Icon                string    `json:"icon" gorm:"size:255"`
	Thumbnail           string    `json:"thumbnail" gorm:"size:255"`
	MasterContentTypeID int       `json:"master_content_type_id" gorm:"default:0;index"`
	DefaultTemplateID   int       `json:"default_template_id" gorm:"default:0"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ContentType) TableName() string {
	return "cms_content_types"
}

// ContentTypeAllowedChild 允许的子内容类型
type ContentTypeAllowedChild struct {
	ContentTypeID int `json:"content_type_id" gorm:"primaryKey;autoIncrement:false"`
	ChildID       int `json:"child_id" gorm:"primaryKey;autoIncrement:false"`
	SortOrder     int `json:"sort_order" gorm:"default:0"`
}

// TableName 指定表名
func (ContentTypeAllowedChild) TableName() string {
	return "cms_content_type_allowed_children"
}

// ContentTypeTemplate 内容类型允许使用的模板
type ContentTypeTemplate struct {
	ContentTypeID int `json:"content_type_id" gorm:"primaryKey;autoIncrement:false"`
	TemplateID    int `json:"template_id" gorm:"primaryKey;autoIncrement:false"`
}

// TableName 指定表名
func (ContentTypeTemplate) TableName() string {
	return "cms_content_type_templates"
}

// PropertyType 内容类型上的属性
type PropertyType struct {
	ID               int       `json:"id" gorm:"primaryKey"`
	ContentTypeID    int       `json:"content_type_id" gorm:"uniqueIndex:idx_property_alias;not null"`
	Alias            string    `json:"alias" gorm:"size:255;uniqueIndex:idx_property_alias;not null"`
	DataTypeID       int       `json:"data_type_id" gorm:"not null"` // 创建后不再修改
	Name             string    `json:"name" gorm:"size:255;not null;default:''"`
	Description      string    `json:"description" gorm:"size:1000"`
	Mandatory        bool      `json:"mandatory" gorm:"default:false"`
	ValidationRegExp string    `json:"validation_reg_exp" gorm:"size:1000"`
	SortOrder        int       `json:"sort_order" gorm:"default:0"`
	TabID            int       `json:"tab_id" gorm:"default:0"` // 0 表示通用属性（无显式标签页）
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PropertyType) TableName() string {
	return "cms_property_types"
}

// Tab 内容类型编辑表单中的标签页
type Tab struct {
	ID            int    `json:"id" gorm:"primaryKey"`
	ContentTypeID int    `json:"content_type_id" gorm:"index;not null"`
	Caption       string `json:"caption" gorm:"size:255;not null"`
	SortOrder     int    `json:"sort_order" gorm:"default:0"`
}

// TableName 指定表名
func (Tab) TableName() string {
	return "cms_tabs"
}

// MacroPropertyType 宏参数类型
type MacroPropertyType struct {
	ID       int    `json:"id" gorm:"primaryKey"`
	Alias    string `json:"alias" gorm:"size:255;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:255"`
	Assembly string `json:"assembly" gorm:"size:255"`
	TypeName string `json:"type_name" gorm:"size:255"`
}

// TableName 指定表名
func (MacroPropertyType) TableName() string {
	return "cms_macro_property_types"
}
