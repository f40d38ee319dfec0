package app

import (
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/core/ddns"
	reg "github.com/jxo-me/ddnsync/core/registry"
)

type IRuntime interface {
	// ProviderRegistry maps provider codes to factories.
	ProviderRegistry() reg.IRegistry[ddns.Factory]
	NewProvider(target *config.DomainTarget) (ddns.IDDNS, error)
}
