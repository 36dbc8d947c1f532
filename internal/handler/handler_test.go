package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opencodefirst/codefirst/config"
	"github.com/opencodefirst/codefirst/internal/domain"
	syncdto "github.com/opencodefirst/codefirst/internal/dto/sync"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/pkg/database"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"github.com/opencodefirst/codefirst/internal/service/export"
	"github.com/opencodefirst/codefirst/internal/service/modelfactory"
	syncservice "github.com/opencodefirst/codefirst/internal/service/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	store  *repository.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.InitDB("sqlite", ":memory:")
	require.NoError(t, err)
	store := repository.NewStore(db)

	reg := registry.New()
	require.NoError(t, reg.RegisterType(domain.DeclaredType{
		Name: "Page",
		Kind: domain.KindDocumentType,
		Properties: []domain.DeclaredProperty{
			{Member: "Title", DataTypeID: domain.DataTypeTextstring},
		},
	}))

	manager := syncservice.NewManager(reg, store, nil, true, syncservice.HostStatusFunc(func() bool { return true }))
	require.NoError(t, manager.Synchronize(ctx))

	factory := modelfactory.New(reg, store.Contents, config.ModelFactoryConfig{})
	exporter := export.New(store.Contents, store.ContentTypes)

	r := gin.New()
	api := r.Group("/api")
	NewSyncHandler(manager, store.SyncRuns).RegisterRoutes(api)
	NewSchemaHandler(store, reg).RegisterRoutes(api)
	NewContentHandler(factory, exporter).RegisterRoutes(api)
	return &testServer{router: r, store: store}
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestSyncStatus(t *testing.T) {
	s := newTestServer(t)
	w := s.get(t, "/api/sync/status")
	require.Equal(t, http.StatusOK, w.Code)

	var resp syncdto.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "succeeded", resp.Data.Status)

	w = s.get(t, "/api/sync/runs/"+resp.Data.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.get(t, "/api/sync/runs/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.get(t, "/api/sync/runs?limit=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.get(t, "/api/sync/runs")
	require.Equal(t, http.StatusOK, w.Code)
	var list syncdto.RunListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
}

func TestSchemaContentType(t *testing.T) {
	s := newTestServer(t)
	w := s.get(t, "/api/schema/content-types/Page")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ContentType model.ContentType    `json:"content_type"`
		Properties  []model.PropertyType `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Page", resp.ContentType.Alias)
	require.Len(t, resp.Properties, 1)
	assert.Equal(t, "title", resp.Properties[0].Alias)

	w = s.get(t, "/api/schema/content-types/Missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.get(t, "/api/schema/declarations")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Page")
}

func TestContentModelAndExport(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	content := &model.Content{ContentTypeAlias: "Page", Name: "首页"}
	require.NoError(t, s.store.Contents.Create(ctx, content))
	require.NoError(t, s.store.Contents.CreateVersion(ctx, &model.ContentVersion{
		ContentID:  content.ID,
		VersionID:  uuid.NewString(),
		Properties: map[string]any{"title": "欢迎", "unused": 1},
	}))

	w := s.get(t, "/api/contents/"+strconv.Itoa(content.ID)+"/model")
	require.Equal(t, http.StatusOK, w.Code)
	var modelResp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &modelResp))
	assert.Equal(t, "Page", modelResp["alias"])
	assert.Equal(t, "*modelfactory.BaseModel", modelResp["model"])

	w = s.get(t, "/api/contents/"+strconv.Itoa(content.ID)+"/export")
	require.Equal(t, http.StatusOK, w.Code)
	var exportResp export.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exportResp))
	assert.Equal(t, map[string]any{"title": "欢迎"}, exportResp.Properties)

	assert.Equal(t, http.StatusBadRequest, s.get(t, "/api/contents/0/model").Code)
	assert.Equal(t, http.StatusBadRequest, s.get(t, "/api/contents/abc/model").Code)
	assert.Equal(t, http.StatusBadRequest, s.get(t, "/api/contents/1/model?version=bad").Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/api/contents/999/export").Code)
}
