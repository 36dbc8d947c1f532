package syncservice

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/opencodefirst/codefirst/internal/eventbus"
	"github.com/opencodefirst/codefirst/internal/model"
	"github.com/opencodefirst/codefirst/internal/pkg/registry"
	"github.com/opencodefirst/codefirst/internal/repository"
	"github.com/opencodefirst/codefirst/internal/service/statemachine"
	"k8s.io/klog/v2"
)

// Reconciler 单个同步步骤
type Reconciler interface {
	Synchronize(ctx context.Context) error
}

// HostStatus 宿主 CMS 是否已完成安装
type HostStatus interface {
	Installed() bool
}

// HostStatusFunc 函数形式的 HostStatus
type HostStatusFunc func() bool

func (f HostStatusFunc) Installed() bool {
	return f()
}

type step struct {
	name       string
	reconciler Reconciler
}

// StepSummary 单个步骤的执行情况
type StepSummary struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunSummary 写入 SyncRun.Summary 的内容
type RunSummary struct {
	Steps   []StepSummary  `json:"steps"`
	Created map[string]int `json:"created"`
	Updated map[string]int `json:"updated"`
}

// Manager 按固定顺序执行模板、数据类型、文档类型、宏参数类型的同步
// 每个 Manager 只执行一次
type Manager struct {
	enabled      bool
	host         HostStatus
	store        *repository.Store
	bus          *eventbus.SchemaEventBus
	stateMachine *statemachine.SyncRunStateMachine
	steps        []step

	once    sync.Once
	err     error
	mutex   sync.RWMutex
	lastRun *model.SyncRun
}

func NewManager(reg registry.Registry, store *repository.Store, bus *eventbus.SchemaEventBus, enabled bool, host HostStatus) *Manager {
	if bus == nil {
		bus = eventbus.NewSchemaEventBus()
	}
	templates := NewTemplateReconciler(reg, store, bus)
	return &Manager{
		enabled:      enabled,
		host:         host,
		store:        store,
		bus:          bus,
		stateMachine: statemachine.NewSyncRunStateMachine(),
		steps: []step{
			{name: "templates", reconciler: templates},
			{name: "data types", reconciler: NewDataTypeReconciler(reg, store, bus)},
			{name: "document types", reconciler: NewDocumentTypeReconciler(reg, store, templates, bus)},
			{name: "macro property types", reconciler: NewMacroPropertyTypeReconciler(reg, store, bus)},
		},
	}
}

// Synchronize 执行同步，重复调用返回首次执行的结果
func (m *Manager) Synchronize(ctx context.Context) error {
	m.once.Do(func() {
		m.err = m.run(ctx)
	})
	return m.err
}

// LastRun 返回最近一次执行记录，尚未执行时为 nil
func (m *Manager) LastRun() *model.SyncRun {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.lastRun == nil {
		return nil
	}
	run := *m.lastRun
	return &run
}

func (m *Manager) setLastRun(run *model.SyncRun) {
	m.mutex.Lock()
	copied := *run
	m.lastRun = &copied
	m.mutex.Unlock()
}

func (m *Manager) transition(ctx context.Context, run *model.SyncRun, to statemachine.SyncRunStatus) error {
	if err := m.stateMachine.Transition(statemachine.SyncRunStatus(run.Status), to, run.ID); err != nil {
		return err
	}
	run.Status = string(to)
	if to.IsTerminal() {
		now := time.Now()
		run.FinishedAt = &now
	}
	if err := m.store.SyncRuns.Save(ctx, run); err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}
	m.setLastRun(run)
	return nil
}

func (m *Manager) run(ctx context.Context) error {
	run := &model.SyncRun{
		ID:        uuid.NewString(),
		Status:    string(statemachine.SyncRunPending),
		StartedAt: time.Now(),
	}
	if err := m.store.SyncRuns.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	m.setLastRun(run)

	installed := m.host != nil && m.host.Installed()
	if !installed || !m.enabled {
		klog.V(6).Infof("跳过模型同步: runID=%s, installed=%v, enabled=%v", run.ID, installed, m.enabled)
		return m.transition(ctx, run, statemachine.SyncRunSkipped)
	}
	if err := m.transition(ctx, run, statemachine.SyncRunRunning); err != nil {
		return err
	}

	summary := RunSummary{
		Created: make(map[string]int),
		Updated: make(map[string]int),
	}
	var counterMutex sync.Mutex
	unsubscribeCreated := m.bus.Subscribe(eventbus.SchemaNodeCreated, func(ctx context.Context, event eventbus.SchemaEvent) error {
		counterMutex.Lock()
		summary.Created[event.Node]++
		counterMutex.Unlock()
		return nil
	})
	defer unsubscribeCreated()
	unsubscribeUpdated := m.bus.Subscribe(eventbus.SchemaNodeUpdated, func(ctx context.Context, event eventbus.SchemaEvent) error {
		counterMutex.Lock()
		summary.Updated[event.Node]++
		counterMutex.Unlock()
		return nil
	})
	defer unsubscribeUpdated()

	var runErr error
	for _, s := range m.steps {
		start := time.Now()
		klog.V(6).Infof("开始同步: runID=%s, step=%s", run.ID, s.name)
		err := s.reconciler.Synchronize(ctx)
		stepSummary := StepSummary{Name: s.name, DurationMS: time.Since(start).Milliseconds()}
		if err != nil {
			stepSummary.Error = err.Error()
			summary.Steps = append(summary.Steps, stepSummary)
			runErr = fmt.Errorf("%s synchronization failed: %w", s.name, err)
			break
		}
		summary.Steps = append(summary.Steps, stepSummary)
	}

	counterMutex.Lock()
	for _, n := range summary.Created {
		run.Created += n
	}
	for _, n := range summary.Updated {
		run.Updated += n
	}
	data, err := json.Marshal(summary)
	counterMutex.Unlock()
	if err != nil {
		klog.Errorf("[sync.Manager] 序列化同步摘要失败: runID=%s, error=%v", run.ID, err)
	} else {
		run.Summary = data
	}

	if runErr != nil {
		klog.Errorf("[sync.Manager] 模型同步失败: runID=%s, error=%v", run.ID, runErr)
		run.ErrorMsg = truncate(runErr.Error(), 2000)
		if err := m.transition(ctx, run, statemachine.SyncRunFailed); err != nil {
			klog.Errorf("[sync.Manager] 更新同步状态失败: runID=%s, error=%v", run.ID, err)
		}
		return runErr
	}

	klog.V(6).Infof("模型同步完成: runID=%s, created=%d, updated=%d", run.ID, run.Created, run.Updated)
	return m.transition(ctx, run, statemachine.SyncRunSucceeded)
}

// truncate 按字节截断，但不拆开多字节字符
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
