package syncservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opencodefirst/codefirst/internal/domain"
	"github.com/opencodefirst/codefirst/internal/pkg/database"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"github.com/stretchr/testify/require"
)

var (
	previewUniqueID = uuid.MustParse("00000000-0000-0000-0000-000000001337")
	previewEditorID = uuid.MustParse("00000000-0000-0000-0000-0000000e1337")
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.InitDB("sqlite", ":memory:")
	require.NoError(t, err)
	return repository.NewStore(db)
}

func installedHost() HostStatus {
	return HostStatusFunc(func() bool { return true })
}

// sampleRegistry 一组覆盖模板、标签页、数据类型、文档类型和宏参数类型的声明
func sampleRegistry(t *testing.T) registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "Master", Kind: domain.KindTemplate, DisplayName: "母版"}))
	require.NoError(t, reg.RegisterType(domain.DeclaredType{Name: "TextPage", Parent: "Master", Kind: domain.KindTemplate}))
	require.NoError(t, reg.RegisterTab(domain.DeclaredTab{Name: "ContentTab", Caption: "Content", SortOrder: 1}))
	require.NoError(t, reg.RegisterDataType(domain.DeclaredDataType{
		Name:     "Preview",
		NodeID:   -1337,
		UniqueID: previewUniqueID,
		EditorID: previewEditorID,
		DBType:   domain.DBTypeNtext,
	}))
	for _, t2 := range sampleDocumentTypes() {
		require.NoError(t, reg.RegisterType(t2))
	}
	require.NoError(t, reg.RegisterMacroPropertyType(domain.DeclaredMacroPropertyType{
		Name:     "ContentPicker",
		Assembly: "codefirst",
		TypeName: "contentPicker",
	}))
	return reg
}

func sampleDocumentTypes() []domain.DeclaredType {
	return []domain.DeclaredType{
		{
			Name:             "Page",
			Kind:             domain.KindDocumentType,
			Description:      "普通页面",
			AllowedTemplates: []string{"TextPage"},
			DefaultTemplate:  "TextPage",
			Properties: []domain.DeclaredProperty{
				{Member: "Title", Name: "标题", DataTypeID: domain.DataTypeTextstring, Tab: "ContentTab", Mandatory: true, SortOrder: 1, Description: "页面标题"},
				{Member: "BodyText", DataTypeID: domain.DataTypeRichtextEditor, Tab: "ContentTab", SortOrder: 2},
				{Member: "HideInNav", DataTypeID: domain.DataTypeTrueFalse},
			},
		},
		{
			Name:   "NewsItem",
			Parent: "Page",
			Kind:   domain.KindDocumentType,
			Icon:   "news.gif",
			Properties: []domain.DeclaredProperty{
				{Member: "PublishDate", DataTypeID: domain.DataTypeDatePicker},
			},
		},
		{
			Name:            "Home",
			Kind:            domain.KindDocumentType,
			AllowedChildren: []string{"Page", "NewsItem", "Missing"},
		},
	}
}

func contentTypeID(t *testing.T, store *repository.Store, alias string) int {
	t.Helper()
	ct, err := store.ContentTypes.GetByAlias(context.Background(), alias)
	require.NoError(t, err)
	return ct.ID
}
