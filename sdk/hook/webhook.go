package hook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/hook"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/internal/util"
	"github.com/pkg/errors"
)

const WebhookCode = "webhook"

// Webhook Webhook
type Webhook struct {
	url         string
	requestBody string
	headers     map[string]string
	client      *http.Client
	logger      logger.ILogger
}

// hasJSONPrefix returns true if the string starts with a JSON open brace.
func hasJSONPrefix(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func NewWebhook(conf *config.WebhookConfig, client *http.Client, log logger.ILogger) *Webhook {
	if client == nil {
		client = util.CreateHTTPClient(consts.ProviderTimeout * time.Second)
	}
	if log == nil {
		log = logger.Default()
	}
	w := &Webhook{
		url:         conf.URL,
		requestBody: conf.RequestBody,
		client:      client,
		logger:      log,
	}
	w.headers = w.CheckParseHeaders(conf.Headers)
	return w
}

func (w *Webhook) String() string {
	return WebhookCode
}

// ExecHook 如 RequestBody 为空则为 GET 请求，否则为 POST 请求
func (w *Webhook) ExecHook(ctx context.Context, event *hook.Event) error {
	if w.url == "" {
		return nil
	}

	method := http.MethodGet
	postPara := ""
	contentType := "application/x-www-form-urlencoded"
	if w.requestBody != "" {
		method = http.MethodPost
		postPara = w.replacePara(event, w.requestBody)
		if json.Valid([]byte(postPara)) {
			contentType = "application/json"
			// 如果 RequestBody 的 JSON 无效但前缀为 JSON 括号则为 JSON
		} else if hasJSONPrefix(postPara) {
			w.logger.Warn("webhook request_body 的 JSON 无效！")
		}
	}

	requestURL := w.replacePara(event, w.url)
	u, err := url.Parse(requestURL)
	if err != nil {
		return &HookError{Hook: WebhookCode, Domain: event.Domain, Err: errors.Wrap(err, "webhook配置中的URL不正确")}
	}
	u.RawQuery = u.Query().Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(postPara))
	if err != nil {
		return &HookError{Hook: WebhookCode, Domain: event.Domain, Err: err}
	}
	for key, value := range w.headers {
		req.Header.Add(key, value)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(consts.HeaderUserAgent, consts.DefaultUserAgent)

	resp, err := w.client.Do(req)
	body, err := util.GetHTTPResponseOrg(resp, u.String(), err)
	if err != nil {
		return &HookError{Hook: WebhookCode, Domain: event.Domain, Err: err}
	}
	w.logger.Infof("webhook调用成功, 返回数据: %q", string(body))
	return nil
}

// replacePara 替换参数
func (w *Webhook) replacePara(event *hook.Event, orgPara string) string {
	return strings.NewReplacer(
		"#{domain}", event.Domain,
		"#{newIp}", event.NewIP,
		"#{oldIp}", event.OldIP,
		"#{status}", string(event.Status),
	).Replace(orgPara)
}

// CheckParseHeaders 一行一个 Header
func (w *Webhook) CheckParseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(strings.ReplaceAll(headerStr, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			w.logger.Warnf("%s Header不正确", line)
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
