package eventbus

type SchemaEventType string

const (
	SchemaNodeCreated SchemaEventType = "NodeCreated"
	SchemaNodeUpdated SchemaEventType = "NodeUpdated"
)

// 事件中节点的种类
const (
	NodeTemplate          = "Template"
	NodeDataType          = "DataType"
	NodeContentType       = "ContentType"
	NodePropertyType      = "PropertyType"
	NodeTab               = "Tab"
	NodeMacroPropertyType = "MacroPropertyType"
)

type SchemaEvent struct {
	Type  SchemaEventType
	Node  string
	Alias string
	ID    int
}

type SchemaEventBus = Bus[SchemaEventType, SchemaEvent]

func NewSchemaEventBus() *SchemaEventBus {
	return NewBus[SchemaEventType, SchemaEvent]()
}
