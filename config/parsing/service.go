package parsing

import (
	"time"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/core/hook"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/core/resolver"
	"github.com/jxo-me/ddnsync/sdk/app"
	sdkHook "github.com/jxo-me/ddnsync/sdk/hook"
	sdkResolver "github.com/jxo-me/ddnsync/sdk/resolver"
	xservice "github.com/jxo-me/ddnsync/sdk/service"
	"github.com/pkg/errors"
)

type options struct {
	resolver resolver.IResolver
	runtime  *app.Application
}

type Option func(*options)

func WithResolver(res resolver.IResolver) Option {
	return func(o *options) {
		o.resolver = res
	}
}

func WithRuntime(rt *app.Application) Option {
	return func(o *options) {
		o.runtime = rt
	}
}

// ParseService turns a validated configuration into a runnable sync service.
// Any target that cannot be served is a startup error.
func ParseService(cfg *config.Config, log logger.ILogger, opts ...Option) (*xservice.DDNSService, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = sdkResolver.New()
	}
	if o.runtime == nil {
		o.runtime = app.New(log)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	domains, err := cfg.Targets()
	if err != nil {
		return nil, err
	}

	notifiers, err := parseNotifiers(cfg, log)
	if err != nil {
		return nil, err
	}

	hookTimeout := time.Duration(cfg.HookTimeoutSecs) * time.Second
	targets := make([]xservice.Target, 0, len(domains))
	for _, domain := range domains {
		provider, err := o.runtime.NewProvider(domain)
		if err != nil {
			return nil, err
		}

		hooks := append([]hook.IHook{}, notifiers...)
		if domain.HookCommand != "" {
			hooks = append([]hook.IHook{sdkHook.NewCommandHook(domain.HookCommand, hookTimeout, log)}, hooks...)
		}
		target := xservice.Target{Domain: domain, Provider: provider}
		if len(hooks) > 0 {
			target.Hook = sdkHook.NewHooks(log, hooks...)
		}
		targets = append(targets, target)
		log.Debugf("target %s", domain)
	}

	return xservice.NewDDNS(cfg, targets, o.resolver, log), nil
}

// parseNotifiers builds the notifiers shared by every target.
func parseNotifiers(cfg *config.Config, log logger.ILogger) ([]hook.IHook, error) {
	var notifiers []hook.IHook
	if cfg.Telegram.Enabled() {
		tg, err := sdkHook.NewTelegram(cfg.Telegram, sdkHook.WithTelegramLogger(log))
		if err != nil {
			return nil, errors.Wrap(err, "telegram")
		}
		notifiers = append(notifiers, tg)
	}
	if cfg.Webhook != nil && cfg.Webhook.URL != "" {
		notifiers = append(notifiers, sdkHook.NewWebhook(cfg.Webhook, nil, log))
	}
	return notifiers, nil
}
