package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/opencodefirst/codefirst/config"
	"github.com/opencodefirst/codefirst/internal/eventbus"
	"github.com/opencodefirst/codefirst/internal/handler"
	"github.com/opencodefirst/codefirst/internal/pkg/database"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"github.com/opencodefirst/codefirst/internal/router"
	"github.com/opencodefirst/codefirst/internal/service/export"
	"github.com/opencodefirst/codefirst/internal/service/modelfactory"
	syncservice "github.com/opencodefirst/codefirst/internal/service/sync"
	"github.com/opencodefirst/codefirst/internal/subscriber"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Database.Type == "" || cfg.Database.Type == "sqlite" {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Fatalf("Failed to create data directory: %v", err)
			}
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := repository.NewStore(db)

	// 加载模型声明
	reg := registry.New()
	results, err := registry.NewLoader(reg).LoadFromDir(cfg.Model.Dir)
	if err != nil {
		log.Fatalf("Failed to load model declarations: %v", err)
	}
	klog.V(6).Infof("已加载模型声明文件: count=%d, dir=%s", len(results), cfg.Model.Dir)

	bus := eventbus.NewSchemaEventBus()
	exporter := export.New(store.Contents, store.ContentTypes)
	subscriber.NewSchemaEventSubscriber(exporter).Register(bus)

	// 同步失败时中止启动
	manager := syncservice.NewManager(reg, store, bus, cfg.Sync.Enabled, cfg.Host)
	if err := manager.Synchronize(context.Background()); err != nil {
		log.Fatalf("Failed to synchronize models: %v", err)
	}

	factory := modelfactory.New(reg, store.Contents, cfg.ModelFactory)
	if err := factory.Init(); err != nil {
		log.Fatalf("Failed to build model mappings: %v", err)
	}

	// 初始化 Handler
	syncHandler := handler.NewSyncHandler(manager, store.SyncRuns)
	schemaHandler := handler.NewSchemaHandler(store, reg)
	contentHandler := handler.NewContentHandler(factory, exporter)

	// 设置路由
	r := router.Setup(cfg, syncHandler, schemaHandler, contentHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
