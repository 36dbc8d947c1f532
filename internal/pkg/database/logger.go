package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"k8s.io/klog/v2"
)

// slowThreshold 超过该耗时的 SQL 以警告级别输出
const slowThreshold = 200 * time.Millisecond

// klogLogger 将 gorm 日志输出到 klog
// SQL 明细只在 -v=8 及以上输出
type klogLogger struct {
	level logger.LogLevel
}

// NewLogger 创建 gorm 日志适配器
func NewLogger() logger.Interface {
	return &klogLogger{level: logger.Warn}
}

func (l *klogLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &klogLogger{level: level}
}

func (l *klogLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		klog.V(6).Infof(msg, args...)
	}
}

func (l *klogLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		klog.Warningf(msg, args...)
	}
}

func (l *klogLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		klog.Errorf(msg, args...)
	}
}

func (l *klogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		klog.Errorf("[gorm] SQL执行失败: error=%v, elapsed=%s, rows=%d, sql=%s", err, elapsed, rows, sql)
	case elapsed > slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		klog.Warningf("[gorm] 慢查询: elapsed=%s, rows=%d, sql=%s", elapsed, rows, sql)
	case klog.V(8).Enabled():
		sql, rows := fc()
		klog.V(8).Infof("[gorm] elapsed=%s, rows=%d, sql=%s", elapsed, rows, sql)
	}
}
