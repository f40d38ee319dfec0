package dnspod

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/ddns"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/internal/util"
	"github.com/pkg/errors"
)

const (
	Endpoint string = "https://dnsapi.cn"
	Code     string = consts.ProviderDnspod

	recordListAction   = "Record.List"
	recordCreateAction = "Record.Create"
	recordModifyAction = "Record.Modify"

	defaultRecordLine   = "默认"
	defaultRecordLineID = "0"
)

// status codes of the dnsapi.cn API
const (
	codeSuccess         = "1"
	codeLoginFailed     = "-1"
	codeAPILimited      = "-2"
	codePermission      = "-7"
	codeLoginTooOften   = "-8"
	codeRecordIDInvalid = "8"
	codeNoRecordsOnList = "10"
)

type dnspodStatus struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dnspodResponse interface {
	status() dnspodStatus
}

type dnspodRecord struct {
	ID     json.Number `json:"id"`
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Value  string      `json:"value"`
	Line   string      `json:"line"`
	LineID string      `json:"line_id"`
}

type dnspodRecordListResp struct {
	Status  dnspodStatus   `json:"status"`
	Records []dnspodRecord `json:"records"`
}

func (r *dnspodRecordListResp) status() dnspodStatus { return r.Status }

type dnspodRecordResp struct {
	Status dnspodStatus `json:"status"`
	Record struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"record"`
}

func (r *dnspodRecordResp) status() dnspodStatus { return r.Status }

// Dnspod talks to the legacy dnsapi.cn API with a login_token.
type Dnspod struct {
	loginToken string
	endpoint   string
	client     *http.Client
	logger     logger.ILogger
}

type Option func(*Dnspod)

func WithEndpoint(endpoint string) Option {
	return func(dp *Dnspod) {
		dp.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(dp *Dnspod) {
		dp.client = client
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(dp *Dnspod) {
		dp.logger = log
	}
}

// New expects the credential as "token_id,token_secret".
func New(credential string, opts ...Option) (*Dnspod, error) {
	id, secret, ok := strings.Cut(credential, ",")
	id, secret = strings.TrimSpace(id), strings.TrimSpace(secret)
	if !ok || id == "" || secret == "" {
		return nil, errors.New("dnspod token must be in the form token_id,token_secret")
	}

	dp := &Dnspod{
		loginToken: id + "," + secret,
		endpoint:   Endpoint,
		logger:     logger.Default(),
	}
	for _, opt := range opts {
		opt(dp)
	}
	if dp.client == nil {
		dp.client = util.CreateHTTPClient(consts.ProviderTimeout * time.Second)
	}
	return dp, nil
}

func (dp *Dnspod) String() string {
	return Code
}

func (dp *Dnspod) FetchCurrent(ctx context.Context, target *config.DomainTarget) (*ddns.DnsRecord, error) {
	subDomain, rootDomain, err := SplitDomain(target.Domain)
	if err != nil {
		return nil, ddns.NewProviderError(Code, ddns.KindNotFound, err, "split %s", target.Domain)
	}
	record, err := dp.getRecord(ctx, subDomain, rootDomain, target.RecordType)
	if err != nil || record == nil {
		return nil, err
	}
	return record.toDnsRecord(), nil
}

func (dp *Dnspod) Upsert(ctx context.Context, target *config.DomainTarget, ip string) (*ddns.UpdateResult, error) {
	subDomain, rootDomain, err := SplitDomain(target.Domain)
	if err != nil {
		return nil, ddns.NewProviderError(Code, ddns.KindNotFound, err, "split %s", target.Domain)
	}

	record, err := dp.getRecord(ctx, subDomain, rootDomain, target.RecordType)
	if err != nil {
		return nil, err
	}
	if record == nil {
		// 不存在，创建
		return dp.create(ctx, subDomain, rootDomain, target.RecordType, ip)
	}
	// 相同不修改
	if record.Value == ip {
		dp.logger.Debugf("dnspod record %s already points to %s", target.Domain, ip)
		return &ddns.UpdateResult{
			Status: consts.UpdatedNothing,
			OldIP:  record.Value,
			Record: record.toDnsRecord(),
		}, nil
	}
	return dp.modify(ctx, record, subDomain, rootDomain, target.RecordType, ip)
}

// getRecord returns the first record of recordType, nil when there is none.
func (dp *Dnspod) getRecord(ctx context.Context, subDomain, rootDomain, recordType string) (*dnspodRecord, error) {
	params := url.Values{}
	params.Set("domain", rootDomain)
	params.Set("sub_domain", subDomain)
	params.Set("record_type", recordType)

	var result dnspodRecordListResp
	if err := dp.request(ctx, recordListAction, params, &result); err != nil {
		if ddns.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	for i := range result.Records {
		if strings.EqualFold(result.Records[i].Type, recordType) || result.Records[i].Type == "" {
			record := result.Records[i]
			dp.logger.Debugf("dnspod current record of %s.%s: id=%s value=%s", subDomain, rootDomain, record.ID, record.Value)
			return &record, nil
		}
	}
	return nil, nil
}

func (dp *Dnspod) create(ctx context.Context, subDomain, rootDomain, recordType, ip string) (*ddns.UpdateResult, error) {
	params := url.Values{}
	params.Set("domain", rootDomain)
	params.Set("sub_domain", subDomain)
	params.Set("record_type", recordType)
	params.Set("record_line", defaultRecordLine)
	params.Set("value", ip)

	var result dnspodRecordResp
	if err := dp.request(ctx, recordCreateAction, params, &result); err != nil {
		return nil, err
	}

	dp.logger.Infof("dnspod created record %s.%s -> %s", subDomain, rootDomain, ip)
	return &ddns.UpdateResult{
		Status: consts.UpdatedCreated,
		Record: &ddns.DnsRecord{
			Type:  recordType,
			Name:  subDomain,
			Value: ip,
			ID:    result.Record.ID.String(),
		},
	}, nil
}

func (dp *Dnspod) modify(ctx context.Context, record *dnspodRecord, subDomain, rootDomain, recordType, ip string) (*ddns.UpdateResult, error) {
	lineID := record.LineID
	if lineID == "" {
		lineID = defaultRecordLineID
	}

	params := url.Values{}
	params.Set("domain", rootDomain)
	params.Set("record_id", record.ID.String())
	params.Set("sub_domain", subDomain)
	params.Set("record_type", recordType)
	params.Set("record_line_id", lineID)
	params.Set("value", ip)

	var result dnspodRecordResp
	if err := dp.request(ctx, recordModifyAction, params, &result); err != nil {
		return nil, err
	}

	dp.logger.Infof("dnspod modified record %s.%s from %s to %s", subDomain, rootDomain, record.Value, ip)
	return &ddns.UpdateResult{
		Status: consts.UpdatedSuccess,
		OldIP:  record.Value,
		Record: &ddns.DnsRecord{
			Type:  recordType,
			Name:  subDomain,
			Value: ip,
			ID:    record.ID.String(),
		},
	}, nil
}

// request 统一请求接口
func (dp *Dnspod) request(ctx context.Context, action string, params url.Values, result dnspodResponse) error {
	params.Set("login_token", dp.loginToken)
	params.Set("format", "json")
	params.Set("lang", "en")
	params.Set("error_on_empty", "no")

	reqURL := dp.endpoint + "/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(params.Encode()))
	if err != nil {
		return ddns.NewProviderError(Code, ddns.KindNetwork, err, "build %s request", action)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(consts.HeaderUserAgent, consts.DefaultUserAgent)

	resp, err := dp.client.Do(req)
	if err = util.GetHTTPResponse(resp, reqURL, err, result); err != nil {
		var decodeErr *util.DecodeError
		if errors.As(err, &decodeErr) {
			return ddns.NewProviderError(Code, ddns.KindMalformedResponse, err, "%s returned an unparseable body", action)
		}
		return ddns.NewProviderError(Code, ddns.KindNetwork, err, "%s failed", action)
	}

	return checkStatus(action, result.status())
}

func checkStatus(action string, status dnspodStatus) error {
	switch status.Code {
	case codeSuccess:
		return nil
	case codeLoginFailed, codePermission, codeLoginTooOften:
		return ddns.NewProviderError(Code, ddns.KindAuth, nil, "%s: %s (code %s)", action, status.Message, status.Code)
	case codeAPILimited:
		return ddns.NewProviderError(Code, ddns.KindRateLimited, nil, "%s: %s (code %s)", action, status.Message, status.Code)
	case codeNoRecordsOnList, codeRecordIDInvalid:
		return ddns.NewProviderError(Code, ddns.KindNotFound, nil, "%s: %s (code %s)", action, status.Message, status.Code)
	default:
		return ddns.NewProviderError(Code, ddns.KindNetwork, nil, "%s: %s (code %s)", action, status.Message, status.Code)
	}
}

func (r *dnspodRecord) toDnsRecord() *ddns.DnsRecord {
	return &ddns.DnsRecord{
		Type:  r.Type,
		Name:  r.Name,
		Value: r.Value,
		ID:    r.ID.String(),
	}
}
