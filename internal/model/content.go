package model

import (
	"time"

	"gorm.io/datatypes"
)

// Content 运行时内容节点
type Content struct {
	ID               int       `json:"id" gorm:"primaryKey"`
	ContentTypeAlias string    `json:"content_type_alias" gorm:"size:255;index;not null"`
	Name             string    `json:"name" gorm:"size:255;not null"`
	ParentID         int       `json:"parent_id" gorm:"default:-1;index"`
	SortOrder        int       `json:"sort_order" gorm:"default:0"`
	TemplateID       int       `json:"template_id" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Content) TableName() string {
	return "cms_contents"
}

// ContentVersion 内容的历史版本，属性值以 JSON 存储
type ContentVersion struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	ContentID  int               `json:"content_id" gorm:"index;not null"`
	VersionID  string            `json:"version_id" gorm:"size:36;uniqueIndex;not null"`
	Name       string            `json:"name" gorm:"size:255"`
	Properties datatypes.JSONMap `json:"properties"`
	Newest     bool              `json:"newest" gorm:"default:false;index"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TableName 指定表名
func (ContentVersion) TableName() string {
	return "cms_content_versions"
}
