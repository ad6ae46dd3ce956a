package async

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"moodmeal/config"
	"moodmeal/pkg/logger"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	global   *ants.Pool
	globalMu sync.RWMutex
	cfgCopy  config.AsyncConfig
)

// ErrNotInitialized 协程池尚未初始化
var ErrNotInitialized = errors.New("async pool not initialized")

// Build 根据配置创建协程池实例
func Build(cfg config.AsyncConfig) (*ants.Pool, error) {
	opts := []ants.Option{
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithPanicHandler(func(p any) {
			logger.Error("async task panic",
				zap.Any("panic", p),
				zap.String("stack", string(debug.Stack())),
			)
		}),
	}
	if cfg.Nonblocking {
		opts = append(opts, ants.WithNonblocking(true))
	}
	return ants.NewPool(cfg.PoolSize, opts...)
}

// Init 初始化全局协程池，重复调用无副作用
func Init(cfg config.AsyncConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil
	}

	p, err := Build(cfg)
	if err != nil {
		return err
	}
	global = p
	cfgCopy = cfg
	return nil
}

// Submit 将任务投递到全局协程池
func Submit(task func()) error {
	globalMu.RLock()
	p := global
	globalMu.RUnlock()

	if p == nil {
		return ErrNotInitialized
	}
	return p.Submit(task)
}

// Release 等待任务执行完后释放协程池
func Release() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil
	}

	var err error
	if cfgCopy.ReleaseTimeout > 0 {
		err = global.ReleaseTimeout(cfgCopy.ReleaseTimeout)
	} else {
		global.Release()
	}
	global = nil
	return err
}

// RunSafe 异步执行任务：带超时、捕获 panic、保留 trace_id
// 协程池不可用时任务被丢弃并记录日志，调用方不会阻塞
func RunSafe(ctx context.Context, task func(ctx context.Context), timeout time.Duration) {
	if task == nil {
		return
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	// 请求结束后父 ctx 会被取消，只透传 trace_id
	baseCtx := context.Background()
	if id := logger.TraceID(ctx); id != "" {
		baseCtx = logger.NewContext(baseCtx, id)
	}
	runCtx, cancel := context.WithTimeout(baseCtx, timeout)

	wrap := func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Ctx(runCtx).Error("async task panic",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
			}
		}()

		task(runCtx)

		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			logger.Ctx(runCtx).Warn("async task timeout", zap.Duration("timeout", timeout))
		}
	}

	if err := Submit(wrap); err != nil {
		cancel()
		logger.Ctx(baseCtx).Error("async submit failed",
			zap.Error(err),
			zap.Duration("timeout", timeout),
		)
	}
}
