// Package ratelimiter は外部APIへのリクエスト頻度をクライアント側で制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	// Wait は次の呼び出しが許可されるまで待機します。ctx が終了した場合はそのエラーを返します。
	Wait(ctx context.Context) error
}

// RateLimiter は固定ウィンドウ方式で、interval ごとに limit 回まで呼び出しを許可します。
// 複数のgoroutineから同時に利用できます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // ウィンドウあたりの上限
	interval  time.Duration // ウィンドウの長さ
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// PerMinute は1分あたり limit 回に制限するRateLimiterを返します。
// limit が0以下の場合は制限なしを意味し nil を返します。
func PerMinute(limit int) RateLimiterInterface {
	if limit <= 0 {
		return nil
	}
	return NewRateLimiter(limit, time.Minute)
}

// Wait はレートリミットの上限に達しているかを確認し、必要であれば待機します。
// 待機中はロックを保持するため、後続の呼び出しは順番に処理されます。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		return nil
	}

	if sleep := rl.interval - now.Sub(rl.lastReset); sleep > 0 {
		slog.Info("rate limit reached, waiting", "limit", rl.limit, "wait", sleep)
		t := time.NewTimer(sleep)
		defer t.Stop()
		select {
		case <-ctx.Done():
			rl.count--
			return ctx.Err()
		case <-t.C:
		}
	}
	// 新しいウィンドウを開始
	rl.count = 1
	rl.lastReset = rl.now()
	return nil
}
