package model

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRun 一次同步的执行记录
type SyncRun struct {
	ID         string         `json:"id" gorm:"size:36;primaryKey"` // UUID
	Status     string         `json:"status" gorm:"size:20;not null;index"` // pending, running, succeeded, failed, skipped
	Created    int            `json:"created" gorm:"default:0"`
	Updated    int            `json:"updated" gorm:"default:0"`
	ErrorMsg   string         `json:"error_msg" gorm:"size:2000"`
	Summary    datatypes.JSON `json:"summary"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
}

// TableName 指定表名
func (SyncRun) TableName() string {
	return "codefirst_sync_runs"
}

// SchemaModels 需要迁移的全部模型
func SchemaModels() []any {
	return []any{
		&Template{},
		&DataTypeNode{},
		&DataTypeEditor{},
		&ContentType{},
		&ContentTypeAllowedChild{},
		&ContentTypeTemplate{},
		&PropertyType{},
		&Tab{},
		&MacroPropertyType{},
		&Content{},
		&ContentVersion{},
		&SyncRun{},
	}
}
