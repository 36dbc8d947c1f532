package domain

import (
	"errors"
	"fmt"
)

// ErrConfiguration 所有配置类错误的根，同步过程中遇到即中止
var ErrConfiguration = errors.New("configuration error")

// 配置错误，均可通过 errors.Is(err, ErrConfiguration) 识别
var (
	ErrDataTypeUnknown = fmt.Errorf("%w: data type definition unknown", ErrConfiguration)
	ErrDefaultTemplate = fmt.Errorf("%w: default template not allowed", ErrConfiguration)
	ErrDocumentType    = fmt.Errorf("%w: type must inherit from %s", ErrConfiguration, BaseModelType)
	ErrTemplateType    = fmt.Errorf("%w: type must inherit from %s", ErrConfiguration, BaseTemplate)
	ErrInvalidTab      = fmt.Errorf("%w: tab must inherit from %s", ErrConfiguration, BaseTab)
	ErrTypeLoad        = fmt.Errorf("%w: configured type could not be loaded", ErrConfiguration)
	ErrDuplicateType   = fmt.Errorf("%w: type already declared", ErrConfiguration)
)

// ErrModelNotFound 解析模型时缺少有效 id
var ErrModelNotFound = errors.New("cannot find model without an id")

// DataTypeUnknownError 返回引用了未安装数据类型的错误
func DataTypeUnknownError(id int) error {
	return fmt.Errorf("%w: no data type definition with id %d could be found, please make sure it is registered", ErrDataTypeUnknown, id)
}

// DataTypeNotDeclaredError 返回引用了未声明或未安装的数据类型的错误
func DataTypeNotDeclaredError(name string) error {
	return fmt.Errorf("%w: data type %q is not declared or not installed", ErrDataTypeUnknown, name)
}

// DefaultTemplateError 返回默认模板不在允许列表中的错误
func DefaultTemplateError(defaultTemplate, documentType string) error {
	return fmt.Errorf("%w: the default template (%s) is not one of the allowed templates for document type (%s)", ErrDefaultTemplate, defaultTemplate, documentType)
}
