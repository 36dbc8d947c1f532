package syncservice

// IDMap 声明类型名到已安装节点 id 的映射
// 每次同步开始时重建，同步期间只增不改
type IDMap struct {
	byName map[string]int
}

func NewIDMap() *IDMap {
	return &IDMap{byName: make(map[string]int)}
}

// Put 记录映射，已存在的名称保持首次写入的 id
func (m *IDMap) Put(name string, id int) {
	if _, ok := m.byName[name]; !ok {
		m.byName[name] = id
	}
}

func (m *IDMap) ID(name string) (int, bool) {
	id, ok := m.byName[name]
	return id, ok
}

func (m *IDMap) Len() int {
	return len(m.byName)
}
