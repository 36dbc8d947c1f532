package export

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/pkg/database"
	"github.com/opencodefirst/codefirst/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRestrictsToDefinedProperties(t *testing.T) {
	ctx := context.Background()
	db, err := database.InitDB("sqlite", ":memory:")
	require.NoError(t, err)
	store := repository.NewStore(db)

	page := &model.ContentType{Alias: "Page", Name: "Page"}
	require.NoError(t, store.ContentTypes.Create(ctx, page))
	news := &model.ContentType{Alias: "NewsItem", Name: "NewsItem", MasterContentTypeID: page.ID}
	require.NoError(t, store.ContentTypes.Create(ctx, news))
	require.NoError(t, store.ContentTypes.AddPropertyType(ctx, &model.PropertyType{ContentTypeID: page.ID, Alias: "title", DataTypeID: domain.DataTypeTextstring}))
	require.NoError(t, store.ContentTypes.AddPropertyType(ctx, &model.PropertyType{ContentTypeID: news.ID, Alias: "publishDate", DataTypeID: domain.DataTypeDatePicker}))

	content := &model.Content{ContentTypeAlias: "NewsItem", Name: "新闻"}
	require.NoError(t, store.Contents.Create(ctx, content))
	require.NoError(t, store.Contents.CreateVersion(ctx, &model.ContentVersion{
		ContentID: content.ID,
		VersionID: uuid.NewString(),
		Properties: map[string]any{
			"title":       "标题",
			"publishDate": "2024-01-01",
			"stale":       "已删除的属性",
		},
	}))

	s := New(store.Contents, store.ContentTypes)
	result, err := s.Export(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, "NewsItem", result.Alias)
	assert.Equal(t, map[string]any{"title": "标题", "publishDate": "2024-01-01"}, result.Properties,
		"应包含继承的属性并丢弃未定义的键")

	// 缓存命中后新增的属性不会出现，直到缓存失效
	require.NoError(t, store.ContentTypes.AddPropertyType(ctx, &model.PropertyType{ContentTypeID: news.ID, Alias: "stale", DataTypeID: domain.DataTypeTextstring}))
	result, err = s.Export(ctx, content.ID)
	require.NoError(t, err)
	assert.NotContains(t, result.Properties, "stale")

	s.Invalidate()
	result, err = s.Export(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, "已删除的属性", result.Properties["stale"])
}

func TestExportMissingContent(t *testing.T) {
	db, err := database.InitDB("sqlite", ":memory:")
	require.NoError(t, err)
	store := repository.NewStore(db)

	_, err = New(store.Contents, store.ContentTypes).Export(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
