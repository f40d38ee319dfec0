package config

import (
	"strings"

	"github.com/jxo-me/ddnsync/consts"
	"github.com/pkg/errors"
)

// DomainTarget 同步目标, built once at startup and never mutated.
type DomainTarget struct {
	// 完整域名, e.g. sub.example.com or @.example.com
	Domain     string
	Provider   string
	Credential string
	// Cloudflare account used to disambiguate zones, optional
	AccountID   string
	IPURL       string
	HookCommand string
	RecordType  string
}

func (t *DomainTarget) String() string {
	return t.Domain
}

// NewDomainTarget resolves per-domain settings against the global defaults.
func NewDomainTarget(dc *DomainConfig, c *Config) (*DomainTarget, error) {
	domain := strings.TrimSpace(dc.Domain)
	if domain == "" {
		return nil, errors.New("domain is empty")
	}
	if !strings.Contains(domain, ".") {
		return nil, errors.Errorf("invalid domain format: %s", domain)
	}

	t := &DomainTarget{
		Domain:      domain,
		Provider:    strings.ToLower(firstNonEmpty(dc.Provider, c.DefaultProvider, consts.DefaultProvider)),
		IPURL:       firstNonEmpty(dc.IPURL, c.DefaultIPURL, consts.DefaultIPURL),
		HookCommand: firstNonEmpty(dc.HookCommand, c.DefaultHookCommand),
		RecordType:  strings.ToUpper(firstNonEmpty(dc.RecordType, consts.RecordTypeA)),
	}

	switch t.Provider {
	case consts.ProviderDnspod:
		t.Credential = firstNonEmpty(dc.DnspodToken, c.DefaultDnspodToken)
		if t.Credential == "" {
			return nil, errors.Errorf("%s uses dnspod but has no dnspod_token and no default_dnspod_token is configured", domain)
		}
	case consts.ProviderCloudflare:
		t.Credential = firstNonEmpty(dc.CloudflareToken, c.DefaultCloudflareToken)
		if t.Credential == "" {
			return nil, errors.Errorf("%s uses cloudflare but has no cloudflare_token and no default_cloudflare_token is configured", domain)
		}
		t.AccountID = firstNonEmpty(dc.AccountID, c.CloudflareAccountID)
	default:
		return nil, errors.Errorf("%s: unsupported provider %q", domain, t.Provider)
	}

	switch t.RecordType {
	case consts.RecordTypeA, consts.RecordTypeAAAA:
	default:
		return nil, errors.Errorf("%s: unsupported record type %q", domain, t.RecordType)
	}

	return t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
