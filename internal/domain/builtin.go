package domain

import "github.com/google/uuid"

// CMS 自带的数据类型节点ID，属性声明可直接引用
const (
	DataTypeDatePicker      = -41
	DataTypeTrueFalse       = -49
	DataTypeNumeric         = -51
	DataTypeRichtextEditor  = -87
	DataTypeTextstring      = -88
	DataTypeTextboxMultiple = -89
)

// BuiltinDataTypes 安装 CMS 时自带的数据类型
var BuiltinDataTypes = []DeclaredDataType{
	{
		Name:     "Date Picker",
		NodeID:   DataTypeDatePicker,
		UniqueID: uuid.MustParse("5046194e-4237-453c-a547-15db3a07c4e1"),
		EditorID: uuid.MustParse("23e93522-3200-44e2-9f29-e61a6fcbb79a"),
		DBType:   DBTypeDate,
	},
	{
		Name:     "True/false",
		NodeID:   DataTypeTrueFalse,
		UniqueID: uuid.MustParse("92897bc6-a5f3-4ffe-ae27-f2e7e33dda49"),
		EditorID: uuid.MustParse("38b352c1-e9f8-4fd8-9324-9a2eab06d97a"),
		DBType:   DBTypeInteger,
	},
	{
		Name:     "Numeric",
		NodeID:   DataTypeNumeric,
		UniqueID: uuid.MustParse("2e6d3631-066e-44b8-aec4-96f09099b2b5"),
		EditorID: uuid.MustParse("1413afcb-d19a-4173-8e9a-68288d2a73b8"),
		DBType:   DBTypeInteger,
	},
	{
		Name:     "Richtext editor",
		NodeID:   DataTypeRichtextEditor,
		UniqueID: uuid.MustParse("ca90c950-0aff-4e72-b976-a30b1ac57dad"),
		EditorID: uuid.MustParse("5e9b75ae-face-41c8-b47e-5f4b0fd82f83"),
		DBType:   DBTypeNtext,
	},
	{
		Name:     "Textstring",
		NodeID:   DataTypeTextstring,
		UniqueID: uuid.MustParse("0cc0eba1-9960-42c9-bf9b-60e150b429ae"),
		EditorID: uuid.MustParse("ec15c1e5-9d90-422a-aa52-4f7622c63bea"),
		DBType:   DBTypeNvarchar,
	},
	{
		Name:     "Textbox multiple",
		NodeID:   DataTypeTextboxMultiple,
		UniqueID: uuid.MustParse("c6bac0dd-4ab9-45b1-8e30-e4b619ee5da3"),
		EditorID: uuid.MustParse("67db8357-ef57-493e-91ac-936d305e0f2a"),
		DBType:   DBTypeNtext,
	},
}
