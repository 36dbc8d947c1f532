package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencodefirst/codefirst/internal/domain"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// File 一个声明文件的结构
type File struct {
	Templates          []domain.DeclaredType              `yaml:"templates"`
	DocumentTypes      []domain.DeclaredType              `yaml:"document_types"`
	Tabs               []domain.DeclaredTab               `yaml:"tabs"`
	DataTypes          []domain.DeclaredDataType          `yaml:"data_types"`
	MacroPropertyTypes []domain.DeclaredMacroPropertyType `yaml:"macro_property_types"`
}

// LoadResult 单个文件的加载结果
type LoadResult struct {
	Path  string
	Count int
}

// Loader 从 yaml 文件加载声明
type Loader struct {
	registry Registry
}

// NewLoader 创建加载器
func NewLoader(registry Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromDir 加载目录下所有 .yaml/.yml 文件，按文件名顺序
// 目录不存在时视为空的模型集合
func (l *Loader) LoadFromDir(dir string) ([]*LoadResult, error) {
	dir = filepath.Clean(dir)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		klog.V(6).Infof("模型目录不存在，跳过加载: %s", dir)
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read model directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	results := make([]*LoadResult, 0, len(paths))
	for _, path := range paths {
		result, err := l.LoadFromPath(path)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// LoadFromPath 加载单个声明文件
func (l *Loader) LoadFromPath(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	count, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	klog.V(6).Infof("已加载模型文件: path=%s, count=%d", path, count)
	return &LoadResult{Path: path, Count: count}, nil
}

// Load 解析 yaml 内容并注册其中的全部声明，返回注册数量
func (l *Loader) Load(data []byte) (int, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse model file: %w", err)
	}

	count := 0
	for _, t := range file.Templates {
		t.Kind = domain.KindTemplate
		if err := l.registry.RegisterType(t); err != nil {
			return count, err
		}
		count++
	}
	for _, t := range file.DocumentTypes {
		t.Kind = domain.KindDocumentType
		if err := l.registry.RegisterType(t); err != nil {
			return count, err
		}
		count++
	}
	for _, tab := range file.Tabs {
		if err := l.registry.RegisterTab(tab); err != nil {
			return count, err
		}
		count++
	}
	for _, dataType := range file.DataTypes {
		if err := l.registry.RegisterDataType(dataType); err != nil {
			return count, err
		}
		count++
	}
	for _, m := range file.MacroPropertyTypes {
		if err := l.registry.RegisterMacroPropertyType(m); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
