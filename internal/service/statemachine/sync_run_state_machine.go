package statemachine

import (
	"fmt"

	"k8s.io/klog/v2"
)

// SyncRunStatus 同步执行记录的状态
type SyncRunStatus string

const (
	SyncRunPending   SyncRunStatus = "pending"   // 已创建，尚未判断是否执行
	SyncRunRunning   SyncRunStatus = "running"   // 正在执行各同步器
	SyncRunSucceeded SyncRunStatus = "succeeded" // 全部同步器执行完成
	SyncRunFailed    SyncRunStatus = "failed"    // 某个同步器返回错误，后续未执行
	SyncRunSkipped   SyncRunStatus = "skipped"   // 未安装或同步被禁用
)

// SyncRunTransition 定义状态迁移
type SyncRunTransition struct {
	From SyncRunStatus
	To   SyncRunStatus
}

// SyncRunStateMachine 同步执行状态机
type SyncRunStateMachine struct {
	allowedTransitions map[SyncRunTransition]bool
}

// NewSyncRunStateMachine 创建状态机
// pending -> running -> succeeded/failed
// pending -> skipped
func NewSyncRunStateMachine() *SyncRunStateMachine {
	sm := &SyncRunStateMachine{
		allowedTransitions: make(map[SyncRunTransition]bool),
	}

	transitions := []SyncRunTransition{
		{SyncRunPending, SyncRunRunning},
		{SyncRunPending, SyncRunSkipped},
		{SyncRunRunning, SyncRunSucceeded},
		{SyncRunRunning, SyncRunFailed},
	}
	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}
	return sm
}

// CanTransition 检查状态迁移是否合法
func (sm *SyncRunStateMachine) CanTransition(from, to SyncRunStatus) bool {
	if from == to {
		return false
	}
	return sm.allowedTransitions[SyncRunTransition{From: from, To: to}]
}

// Transition 执行状态迁移（带日志）
func (sm *SyncRunStateMachine) Transition(from, to SyncRunStatus, runID string) error {
	if !sm.CanTransition(from, to) {
		err := &InvalidSyncRunStateTransitionError{From: string(from), To: string(to)}
		klog.V(6).Infof("同步状态迁移被拒绝: runID=%s, %s -> %s, error=%v", runID, from, to, err)
		return err
	}
	klog.V(6).Infof("同步状态迁移成功: runID=%s, %s -> %s", runID, from, to)
	return nil
}

// IsTerminal 判断是否为终止态
func (s SyncRunStatus) IsTerminal() bool {
	return s == SyncRunSucceeded || s == SyncRunFailed || s == SyncRunSkipped
}

// InvalidSyncRunStateTransitionError 无效的状态迁移错误
type InvalidSyncRunStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidSyncRunStateTransitionError) Error() string {
	return fmt.Sprintf("invalid sync run state transition: %s -> %s", e.From, e.To)
}
