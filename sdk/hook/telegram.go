package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/hook"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/internal/util"
	"github.com/pkg/errors"
)

const (
	TelegramCode     = "telegram"
	TelegramEndpoint = "https://api.telegram.org"
)

var telegramMessage = template.Must(template.New(TelegramCode).Parse(
	"*DDNS 记录已更新*\n" +
		"域名: {{.Domain}}\n" +
		"新 IP: {{.NewIP}}\n" +
		"旧 IP: {{if .OldIP}}{{.OldIP}}{{else}}(new record){{end}}\n"))

var markdownV2Replacer = strings.NewReplacer(
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"-", `\-`,
	".", `\.`,
	"!", `\!`,
)

// EscapeMarkdownV2 转义 MarkdownV2 特殊字符, * is kept for bold text.
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}

type telegramRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Telegram sends a message through the bot API for every change.
type Telegram struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client
	logger   logger.ILogger
}

type TelegramOption func(*Telegram)

func WithTelegramEndpoint(endpoint string) TelegramOption {
	return func(t *Telegram) {
		t.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.client = client
	}
}

func WithTelegramLogger(log logger.ILogger) TelegramOption {
	return func(t *Telegram) {
		t.logger = log
	}
}

func NewTelegram(conf *config.TelegramConfig, opts ...TelegramOption) (*Telegram, error) {
	if !conf.Enabled() {
		return nil, errors.New("telegram bot_token and chat_id are required")
	}
	t := &Telegram{
		botToken: conf.BotToken,
		chatID:   conf.ChatID,
		endpoint: TelegramEndpoint,
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = util.CreateHTTPClient(consts.ProviderTimeout * time.Second)
		if conf.HTTPProxy != "" {
			proxy, err := url.Parse(conf.HTTPProxy)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid telegram http_proxy %s", conf.HTTPProxy)
			}
			t.client.Transport.(*http.Transport).Proxy = http.ProxyURL(proxy)
		}
	}
	return t, nil
}

func (t *Telegram) String() string {
	return TelegramCode
}

func (t *Telegram) ExecHook(ctx context.Context, event *hook.Event) error {
	var text bytes.Buffer
	if err := telegramMessage.Execute(&text, event); err != nil {
		return &HookError{Hook: TelegramCode, Domain: event.Domain, Err: errors.Wrap(err, "render message")}
	}

	payload, err := json.Marshal(telegramRequest{
		ChatID:    t.chatID,
		Text:      EscapeMarkdownV2(text.String()),
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		return &HookError{Hook: TelegramCode, Domain: event.Domain, Err: err}
	}

	// the token is part of the path, keep it out of errors
	reqURL := t.endpoint + "/bot" + t.botToken + "/sendMessage"
	safeURL := t.endpoint + "/bot***/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return &HookError{Hook: TelegramCode, Domain: event.Domain, Err: errors.New("build sendMessage request")}
	}
	req.Header.Set("Content-Type", "application/json")

	var result telegramResponse
	resp, err := t.client.Do(req)
	if err != nil {
		err = errors.New(strings.ReplaceAll(err.Error(), t.botToken, "***"))
	}
	if err = util.GetHTTPResponse(resp, safeURL, err, &result); err != nil {
		return &HookError{Hook: TelegramCode, Domain: event.Domain, Err: err}
	}
	if !result.OK {
		return &HookError{Hook: TelegramCode, Domain: event.Domain, Err: errors.Errorf("sendMessage rejected: %s", result.Description)}
	}

	t.logger.Infof("已发送 Telegram 消息: %s", event.Domain)
	return nil
}
