package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/opencodefirst/codefirst/internal/repository"
	"k8s.io/klog/v2"
)

// Service 导出内容最新版本的属性值
type Service struct {
	contents     repository.ContentRepository
	contentTypes repository.ContentTypeRepository

	mutex   sync.Mutex
	aliases map[string][]string // 内容类型 alias -> 属性 alias（含继承）
}

func New(contents repository.ContentRepository, contentTypes repository.ContentTypeRepository) *Service {
	return &Service{
		contents:     contents,
		contentTypes: contentTypes,
		aliases:      make(map[string][]string),
	}
}

// Result 导出结果
type Result struct {
	ID         int            `json:"id"`
	Alias      string         `json:"alias"`
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	Properties map[string]any `json:"properties"`
}

// Export 只导出内容类型上定义的属性，未定义的键被丢弃
func (s *Service) Export(ctx context.Context, contentID int) (*Result, error) {
	content, err := s.contents.Get(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load content %d: %w", contentID, err)
	}
	version, err := s.contents.GetNewestVersion(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load newest version of content %d: %w", contentID, err)
	}

	aliases, err := s.propertyAliases(ctx, content.ContentTypeAlias)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:         content.ID,
		Alias:      content.ContentTypeAlias,
		Name:       content.Name,
		Version:    version.VersionID,
		Properties: make(map[string]any, len(aliases)),
	}
	for _, alias := range aliases {
		result.Properties[alias] = version.Properties[alias]
	}
	return result, nil
}

// propertyAliases 读取并缓存内容类型及其父类型上的属性 alias
func (s *Service) propertyAliases(ctx context.Context, contentTypeAlias string) ([]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if aliases, ok := s.aliases[contentTypeAlias]; ok {
		return aliases, nil
	}

	contentType, err := s.contentTypes.GetByAlias(ctx, contentTypeAlias)
	if err != nil {
		return nil, fmt.Errorf("failed to load content type %s: %w", contentTypeAlias, err)
	}

	var aliases []string
	visited := make(map[int]bool)
	for id := contentType.ID; id > 0 && !visited[id]; {
		visited[id] = true
		properties, err := s.contentTypes.GetPropertyTypes(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load properties of content type %d: %w", id, err)
		}
		for _, p := range properties {
			aliases = append(aliases, p.Alias)
		}
		parent, err := s.contentTypes.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load content type %d: %w", id, err)
		}
		id = parent.MasterContentTypeID
	}

	s.aliases[contentTypeAlias] = aliases
	klog.V(6).Infof("已缓存属性别名: contentType=%s, count=%d", contentTypeAlias, len(aliases))
	return aliases, nil
}

// Invalidate 清空别名缓存，模型同步后调用
func (s *Service) Invalidate() {
	s.mutex.Lock()
	s.aliases = make(map[string][]string)
	s.mutex.Unlock()
}
