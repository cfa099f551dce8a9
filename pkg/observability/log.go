package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level.
// It implements PipelineHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnOverlapStart(_ context.Context, fragments int) {
	h.logger.Debug("overlap start", "fragments", fragments)
}

func (h *LogHooks) OnOverlapComplete(_ context.Context, fragments int, d time.Duration, err error) {
	h.done("overlap", d, err, "fragments", fragments)
}

func (h *LogHooks) OnSeedStart(_ context.Context, restarts int) {
	h.logger.Debug("seed start", "restarts", restarts)
}

func (h *LogHooks) OnSeedComplete(_ context.Context, score int, d time.Duration, err error) {
	h.done("seed", d, err, "score", score)
}

func (h *LogHooks) OnAnnealStart(_ context.Context, iterations int) {
	h.logger.Debug("anneal start", "iterations", iterations)
}

func (h *LogHooks) OnAnnealComplete(_ context.Context, score, iterations int, d time.Duration, err error) {
	h.done("anneal", d, err, "score", score, "iterations", iterations)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Warn("request failed", "method", method, "path", path, "err", err)
}

func (h *LogHooks) done(stage string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "elapsed", d.Round(time.Millisecond))
	if err != nil {
		h.logger.Debug(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
