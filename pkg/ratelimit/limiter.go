package ratelimit

import (
	"sync"
	"time"

	"moodmeal/pkg/metrics"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc 从请求中提取限流键，返回空串时不限流
type KeyFunc func(c *gin.Context) string

// Limiter 按键（用户ID或IP）的令牌桶限流器，空闲的桶会被定期清理
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// New 创建限流器：每分钟 perMinute 个请求，桶容量 burst
func New(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*entry),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idleTTL:  time.Hour,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Allow 判断该键的请求是否放行
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = e
	}
	e.lastAccess = now
	lim := e.limiter
	l.mu.Unlock()

	return lim.AllowN(now, 1)
}

// Len 当前维护的桶数量
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Cleanup 删除超过 idleTTL 未访问的桶
func (l *Limiter) Cleanup() {
	threshold := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.limiters {
		if e.lastAccess.Before(threshold) {
			delete(l.limiters, key)
		}
	}
}

// StartCleanup 启动后台清理，调用 Stop 结束
func (l *Limiter) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop 停止后台清理
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware 限流中间件，超限返回 429
func (l *Limiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k != "" && !l.Allow(k) {
			metrics.RateLimitedTotal.WithLabelValues(c.FullPath()).Inc()
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
