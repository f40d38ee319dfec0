package hook

import (
	"context"
	"strings"

	"github.com/jxo-me/ddnsync/core/hook"
	"github.com/jxo-me/ddnsync/core/logger"
)

// Hooks fans one event out to several notifiers.
// Failures are logged as warnings and never stop the remaining notifiers.
type Hooks struct {
	hooks  []hook.IHook
	logger logger.ILogger
}

func NewHooks(log logger.ILogger, hooks ...hook.IHook) *Hooks {
	if log == nil {
		log = logger.Default()
	}
	h := &Hooks{logger: log}
	for _, item := range hooks {
		if item != nil {
			h.hooks = append(h.hooks, item)
		}
	}
	return h
}

func (h *Hooks) String() string {
	names := make([]string, 0, len(h.hooks))
	for _, item := range h.hooks {
		names = append(names, item.String())
	}
	return strings.Join(names, ",")
}

func (h *Hooks) Len() int {
	return len(h.hooks)
}

// ExecHook always returns nil, errors end up in the log.
func (h *Hooks) ExecHook(ctx context.Context, event *hook.Event) error {
	for _, item := range h.hooks {
		if err := item.ExecHook(ctx, event); err != nil {
			h.logger.WithFields(map[string]any{
				"hook":   item.String(),
				"domain": event.Domain,
			}).Warnf("hook failed: %v", err)
		}
	}
	return nil
}
