package cloudflare

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	cf "github.com/cloudflare/cloudflare-go"
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/ddns"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/internal/util"
	"github.com/pkg/errors"
)

const (
	Endpoint string = "https://api.cloudflare.com/client/v4"
	Code     string = consts.ProviderCloudflare

	// ttl 1 means automatic
	autoTTL = 1
)

// Cloudflare publishes records through the v4 API with a bearer token.
type Cloudflare struct {
	api    *cf.API
	zones  *ZoneCache
	logger logger.ILogger
}

type options struct {
	endpoint string
	client   *http.Client
	zones    *ZoneCache
	logger   logger.ILogger
}

type Option func(*options)

func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithZoneCache shares a zone cache between providers.
func WithZoneCache(zones *ZoneCache) Option {
	return func(o *options) {
		o.zones = zones
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(o *options) {
		o.logger = log
	}
}

func New(token string, opts ...Option) (*Cloudflare, error) {
	o := options{
		endpoint: Endpoint,
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = util.CreateHTTPClient(consts.ProviderTimeout * time.Second)
	}
	if o.zones == nil {
		o.zones = NewZoneCache()
	}

	api, err := cf.NewWithAPIToken(token,
		cf.BaseURL(o.endpoint),
		cf.HTTPClient(withStatusTransport(o.client)),
		cf.UserAgent(consts.DefaultUserAgent),
		// 失败由同步循环在下一个周期重试
		cf.UsingRetryPolicy(0, 0, 0),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cloudflare client")
	}

	return &Cloudflare{
		api:    api,
		zones:  o.zones,
		logger: o.logger,
	}, nil
}

func (c *Cloudflare) String() string {
	return Code
}

func (c *Cloudflare) FetchCurrent(ctx context.Context, target *config.DomainTarget) (*ddns.DnsRecord, error) {
	zoneID, err := c.zoneID(ctx, target)
	if err != nil {
		return nil, err
	}
	record, err := c.getRecord(ctx, zoneID, target)
	if err != nil || record == nil {
		return nil, err
	}
	return toDnsRecord(record), nil
}

func (c *Cloudflare) Upsert(ctx context.Context, target *config.DomainTarget, ip string) (*ddns.UpdateResult, error) {
	zoneID, err := c.zoneID(ctx, target)
	if err != nil {
		return nil, err
	}
	record, err := c.getRecord(ctx, zoneID, target)
	if err != nil {
		return nil, err
	}

	rc := cf.ZoneIdentifier(zoneID)
	if record == nil {
		created, err := c.api.CreateDNSRecord(ctx, rc, cf.CreateDNSRecordParams{
			Type:    target.RecordType,
			Name:    recordName(target.Domain),
			Content: ip,
			TTL:     autoTTL,
			Proxied: cf.BoolPtr(false),
		})
		if err != nil {
			return nil, classify(err, "create record %s", target.Domain)
		}
		c.logger.Infof("cloudflare created record %s -> %s", target.Domain, ip)
		if created.ID == "" {
			created.Type, created.Name, created.Content = target.RecordType, recordName(target.Domain), ip
		}
		return &ddns.UpdateResult{
			Status: consts.UpdatedCreated,
			Record: toDnsRecord(&created),
		}, nil
	}

	if record.Content == ip {
		c.logger.Debugf("cloudflare record %s already points to %s", target.Domain, ip)
		return &ddns.UpdateResult{
			Status: consts.UpdatedNothing,
			OldIP:  record.Content,
			Record: toDnsRecord(record),
		}, nil
	}

	if _, err := c.api.UpdateDNSRecord(ctx, rc, cf.UpdateDNSRecordParams{
		ID:      record.ID,
		Type:    record.Type,
		Name:    record.Name,
		Content: ip,
	}); err != nil {
		return nil, classify(err, "update record %s", target.Domain)
	}
	c.logger.Infof("cloudflare updated record %s from %s to %s", target.Domain, record.Content, ip)

	return &ddns.UpdateResult{
		Status: consts.UpdatedSuccess,
		OldIP:  record.Content,
		Record: &ddns.DnsRecord{
			Type:  record.Type,
			Name:  record.Name,
			Value: ip,
			ID:    record.ID,
		},
	}, nil
}

func (c *Cloudflare) zoneID(ctx context.Context, target *config.DomainTarget) (string, error) {
	zoneName, err := ZoneName(target.Domain)
	if err != nil {
		return "", ddns.NewProviderError(Code, ddns.KindNotFound, err, "derive zone of %s", target.Domain)
	}

	return c.zones.Resolve(ctx, ZoneKey(zoneName, target.AccountID), func(ctx context.Context) (string, error) {
		resp, err := c.api.ListZonesContext(ctx, cf.WithZoneFilters(zoneName, target.AccountID, ""))
		if err != nil {
			return "", classify(err, "list zones named %s", zoneName)
		}
		if len(resp.Result) == 0 {
			return "", ddns.NewProviderError(Code, ddns.KindNotFound, nil, "zone %s not found", zoneName)
		}
		if len(resp.Result) > 1 {
			c.logger.Warnf("cloudflare returned %d zones named %s, using %s", len(resp.Result), zoneName, resp.Result[0].ID)
		}
		c.logger.Debugf("cloudflare zone %s resolved to %s", zoneName, resp.Result[0].ID)
		return resp.Result[0].ID, nil
	})
}

// getRecord returns the first record matching the target name and type, nil when there is none.
func (c *Cloudflare) getRecord(ctx context.Context, zoneID string, target *config.DomainTarget) (*cf.DNSRecord, error) {
	records, _, err := c.api.ListDNSRecords(ctx, cf.ZoneIdentifier(zoneID), cf.ListDNSRecordsParams{
		Type: target.RecordType,
		Name: recordName(target.Domain),
	})
	if err != nil {
		return nil, classify(err, "list records of %s", target.Domain)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// recordName maps the @ marker to the zone apex.
func recordName(domain string) string {
	return strings.TrimPrefix(domain, "@.")
}

func toDnsRecord(r *cf.DNSRecord) *ddns.DnsRecord {
	return &ddns.DnsRecord{
		Type:  r.Type,
		Name:  r.Name,
		Value: r.Content,
		ID:    r.ID,
	}
}

// classify maps cloudflare-go errors onto provider error kinds.
func classify(err error, format string, args ...any) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ddns.NewProviderError(Code, ddns.KindAuth, err, format, args...)
		case http.StatusTooManyRequests:
			return ddns.NewProviderError(Code, ddns.KindRateLimited, err, format, args...)
		}
	}

	var typed interface{ Type() cf.ErrorType }
	if errors.As(err, &typed) {
		switch typed.Type() {
		case cf.ErrorTypeAuthentication, cf.ErrorTypeAuthorization:
			return ddns.NewProviderError(Code, ddns.KindAuth, err, format, args...)
		case cf.ErrorTypeRateLimit:
			return ddns.NewProviderError(Code, ddns.KindRateLimited, err, format, args...)
		case cf.ErrorTypeNotFound:
			return ddns.NewProviderError(Code, ddns.KindNotFound, err, format, args...)
		default:
			return ddns.NewProviderError(Code, ddns.KindNetwork, err, format, args...)
		}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ddns.NewProviderError(Code, ddns.KindNetwork, err, format, args...)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ddns.NewProviderError(Code, ddns.KindMalformedResponse, err, format, args...)
	}

	// with retries disabled the client reports 429 and 5xx as plain errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"):
		return ddns.NewProviderError(Code, ddns.KindRateLimited, err, format, args...)
	case strings.Contains(msg, "unmarshal"):
		return ddns.NewProviderError(Code, ddns.KindMalformedResponse, err, format, args...)
	default:
		return ddns.NewProviderError(Code, ddns.KindNetwork, err, format, args...)
	}
}
