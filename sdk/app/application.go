package app

import (
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/core/app"
	"github.com/jxo-me/ddnsync/core/ddns"
	"github.com/jxo-me/ddnsync/core/logger"
	reg "github.com/jxo-me/ddnsync/core/registry"
	"github.com/jxo-me/ddnsync/sdk/ddns/cloudflare"
	"github.com/jxo-me/ddnsync/sdk/ddns/dnspod"
	"github.com/jxo-me/ddnsync/sdk/registry"
	"github.com/pkg/errors"
)

var ErrDnsNotSupported = errors.New("dns not supported")

var _ app.IRuntime = (*Application)(nil)

// Application owns the providers of one run. All cloudflare providers it
// creates share a single zone cache.
type Application struct {
	providerReg reg.IRegistry[ddns.Factory]
	zones       *cloudflare.ZoneCache
	logger      logger.ILogger
}

func New(log logger.ILogger) *Application {
	if log == nil {
		log = logger.Default()
	}
	a := &Application{
		providerReg: registry.New[ddns.Factory](),
		zones:       cloudflare.NewZoneCache(),
		logger:      log,
	}
	_ = a.providerReg.Register(dnspod.Code, a.newDnspod)
	_ = a.providerReg.Register(cloudflare.Code, a.newCloudflare)
	return a
}

func (a *Application) ProviderRegistry() reg.IRegistry[ddns.Factory] {
	return a.providerReg
}

func (a *Application) ZoneCache() *cloudflare.ZoneCache {
	return a.zones
}

func (a *Application) NewProvider(target *config.DomainTarget) (ddns.IDDNS, error) {
	factory := a.providerReg.Get(target.Provider)
	if factory == nil {
		return nil, errors.Wrapf(ErrDnsNotSupported, "%s: %q", target.Domain, target.Provider)
	}
	return factory(target)
}

func (a *Application) newDnspod(target *config.DomainTarget) (ddns.IDDNS, error) {
	if _, _, err := dnspod.SplitDomain(target.Domain); err != nil {
		return nil, err
	}
	provider, err := dnspod.New(target.Credential, dnspod.WithLogger(a.logger))
	if err != nil {
		return nil, errors.Wrap(err, target.Domain)
	}
	return provider, nil
}

func (a *Application) newCloudflare(target *config.DomainTarget) (ddns.IDDNS, error) {
	if _, err := cloudflare.ZoneName(target.Domain); err != nil {
		return nil, err
	}
	provider, err := cloudflare.New(target.Credential,
		cloudflare.WithZoneCache(a.zones),
		cloudflare.WithLogger(a.logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, target.Domain)
	}
	return provider, nil
}
