package repository

import (
	"context"
	"errors"

	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

type TemplateRepository interface {
	List(ctx context.Context) ([]model.Template, error)
	Get(ctx context.Context, id int) (*model.Template, error)
	GetByAlias(ctx context.Context, alias string) (*model.Template, error)
	Create(ctx context.Context, template *model.Template) error
	Save(ctx context.Context, template *model.Template) error
}

type DataTypeRepository interface {
	List(ctx context.Context) ([]model.DataTypeNode, error)
	Get(ctx context.Context, id int) (*model.DataTypeNode, error)
	GetByUniqueID(ctx context.Context, uniqueID string) (*model.DataTypeNode, error)
	GetEditor(ctx context.Context, nodeID int) (*model.DataTypeEditor, error)
	// Install 写入节点行和编辑器绑定行；node.ID 为 0 时分配新 id
	Install(ctx context.Context, node *model.DataTypeNode, editor *model.DataTypeEditor) error
}

type ContentTypeRepository interface {
	List(ctx context.Context) ([]model.ContentType, error)
	Get(ctx context.Context, id int) (*model.ContentType, error)
	GetByAlias(ctx context.Context, alias string) (*model.ContentType, error)
	Create(ctx context.Context, contentType *model.ContentType) error
	Save(ctx context.Context, contentType *model.ContentType) error

	GetAllowedChildIDs(ctx context.Context, contentTypeID int) ([]int, error)
	SetAllowedChildIDs(ctx context.Context, contentTypeID int, childIDs []int) error
	GetAllowedTemplateIDs(ctx context.Context, contentTypeID int) ([]int, error)
	SetAllowedTemplateIDs(ctx context.Context, contentTypeID int, templateIDs []int) error

	GetPropertyTypes(ctx context.Context, contentTypeID int) ([]model.PropertyType, error)
	GetPropertyType(ctx context.Context, contentTypeID int, alias string) (*model.PropertyType, error)
	AddPropertyType(ctx context.Context, propertyType *model.PropertyType) error
	SavePropertyType(ctx context.Context, propertyType *model.PropertyType) error

	GetTabs(ctx context.Context, contentTypeID int) ([]model.Tab, error)
	// AddTab 创建标签页并返回新 id
	AddTab(ctx context.Context, contentTypeID int, caption string) (int, error)
	SetTabCaption(ctx context.Context, tabID int, caption string) error
	SetTabSortOrder(ctx context.Context, tabID int, sortOrder int) error
}

type MacroPropertyTypeRepository interface {
	List(ctx context.Context) ([]model.MacroPropertyType, error)
	GetByAlias(ctx context.Context, alias string) (*model.MacroPropertyType, error)
	Create(ctx context.Context, macroPropertyType *model.MacroPropertyType) error
	Save(ctx context.Context, macroPropertyType *model.MacroPropertyType) error
}

type ContentRepository interface {
	Get(ctx context.Context, id int) (*model.Content, error)
	Create(ctx context.Context, content *model.Content) error
	GetVersion(ctx context.Context, contentID int, versionID string) (*model.ContentVersion, error)
	GetNewestVersion(ctx context.Context, contentID int) (*model.ContentVersion, error)
	// CreateVersion 新增版本并将其标记为最新
	CreateVersion(ctx context.Context, version *model.ContentVersion) error
}

type SyncRunRepository interface {
	Create(ctx context.Context, run *model.SyncRun) error
	Save(ctx context.Context, run *model.SyncRun) error
	Get(ctx context.Context, id string) (*model.SyncRun, error)
	List(ctx context.Context, limit int) ([]model.SyncRun, error)
}

// Store 汇总同步需要的全部 Repository，并提供事务边界
type Store struct {
	db *gorm.DB

	Templates          TemplateRepository
	DataTypes          DataTypeRepository
	ContentTypes       ContentTypeRepository
	MacroPropertyTypes MacroPropertyTypeRepository
	Contents           ContentRepository
	SyncRuns           SyncRunRepository
}

// NewStore 基于同一个 gorm.DB 创建 Store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:                 db,
		Templates:          NewTemplateRepository(db),
		DataTypes:          NewDataTypeRepository(db),
		ContentTypes:       NewContentTypeRepository(db),
		MacroPropertyTypes: NewMacroPropertyTypeRepository(db),
		Contents:           NewContentRepository(db),
		SyncRuns:           NewSyncRunRepository(db),
	}
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction 在一个事务内执行 fn，fn 返回错误时整体回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// notFound 统一转换 gorm 的记录不存在错误
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
