package repository

import (
	"context"
	"fmt"

	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/gorm"
)

type dataTypeRepository struct {
	db *gorm.DB
}

// NewDataTypeRepository 创建 Repository 实例
func NewDataTypeRepository(db *gorm.DB) DataTypeRepository {
	return &dataTypeRepository{db: db}
}

// List 获取所有数据类型节点
func (r *dataTypeRepository) List(ctx context.Context) ([]model.DataTypeNode, error) {
	var nodes []model.DataTypeNode
	result := r.db.WithContext(ctx).Order("id ASC").Find(&nodes)
	return nodes, result.Error
}

// Get 根据节点ID获取数据类型
func (r *dataTypeRepository) Get(ctx context.Context, id int) (*model.DataTypeNode, error) {
	var node model.DataTypeNode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&node).Error; err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

// GetByUniqueID 根据全局唯一标识获取数据类型
func (r *dataTypeRepository) GetByUniqueID(ctx context.Context, uniqueID string) (*model.DataTypeNode, error) {
	var node model.DataTypeNode
	if err := r.db.WithContext(ctx).Where("unique_id = ?", uniqueID).First(&node).Error; err != nil {
		return nil, notFound(err)
	}
	return &node, nil
}

// GetEditor 获取数据类型的编辑器绑定
func (r *dataTypeRepository) GetEditor(ctx context.Context, nodeID int) (*model.DataTypeEditor, error) {
	var editor model.DataTypeEditor
	if err := r.db.WithContext(ctx).Where("node_id = ?", nodeID).First(&editor).Error; err != nil {
		return nil, notFound(err)
	}
	return &editor, nil
}

// Install 在一个事务中写入节点行和编辑器绑定行
// 主键冲突等数据库错误直接返回，不做重试
func (r *dataTypeRepository) Install(ctx context.Context, node *model.DataTypeNode, editor *model.DataTypeEditor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if node.ID == 0 {
			var maxID int
			if err := tx.Model(&model.DataTypeNode{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
				return fmt.Errorf("allocate data type id: %w", err)
			}
			if maxID < 0 {
				maxID = 0
			}
			node.ID = maxID + 1
		}
		if node.Path == "" {
			node.Path = fmt.Sprintf("%d,%d", node.ParentID, node.ID)
		}
		if err := tx.Create(node).Error; err != nil {
			return fmt.Errorf("insert data type node %d: %w", node.ID, err)
		}
		editor.NodeID = node.ID
		if err := tx.Create(editor).Error; err != nil {
			return fmt.Errorf("insert data type editor %d: %w", node.ID, err)
		}
		return nil
	})
}

// NewDataTypeRows 将声明转换为待写入的节点行和编辑器绑定行
func NewDataTypeRows(dataType domain.DeclaredDataType) (*model.DataTypeNode, *model.DataTypeEditor) {
	node := &model.DataTypeNode{
		ID:         dataType.NodeID,
		UniqueID:   dataType.UniqueID.String(),
		Text:       dataType.Name,
		ObjectType: model.DataTypeObjectType,
		ParentID:   -1,
		Level:      1,
		SortOrder:  2,
	}
	editor := &model.DataTypeEditor{
		ControlID: dataType.EditorID.String(),
		DBType:    string(dataType.DBType.Normalize()),
	}
	return node, editor
}
