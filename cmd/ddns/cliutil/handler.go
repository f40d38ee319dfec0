package cliutil

import (
	"github.com/joho/godotenv"
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const errorExitCode = 1

const (
	ConfigFlag      = "config"
	EnvFileFlag     = "env-file"
	VerboseFlag     = "verbose"
	OutputFlag      = "output"
	TgBotTokenFlag  = "tg-bot-token"
	TgChatIDFlag    = "tg-chat-id"
	TgHTTPProxyFlag = "tg-http-proxy"
)

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage:   "configuration file",
			Value:   consts.DefaultConfigFile,
			EnvVars: []string{config.ConfigFilePathENV},
		},
		&cli.StringFlag{
			Name:  EnvFileFlag,
			Usage: "load DDNS_* variables from a dotenv `FILE` before reading the configuration",
		},
		&cli.BoolFlag{
			Name:    VerboseFlag,
			Aliases: []string{"v"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:    OutputFlag,
			Aliases: []string{"O"},
			Usage:   "print the effective configuration as `FORMAT` (yaml or json) and exit",
		},
		&cli.StringFlag{
			Name:    TgBotTokenFlag,
			Usage:   "telegram bot token, overrides [telegram] bot_token",
			EnvVars: []string{"DDNS_TG_BOT_TOKEN"},
		},
		&cli.StringFlag{
			Name:    TgChatIDFlag,
			Usage:   "telegram chat id, overrides [telegram] chat_id",
			EnvVars: []string{"DDNS_TG_CHAT_ID"},
		},
		&cli.StringFlag{
			Name:    TgHTTPProxyFlag,
			Usage:   "http proxy used for telegram, overrides [telegram] http_proxy",
			EnvVars: []string{"DDNS_TG_HTTP_PROXY"},
		},
	}
}

func Action(actionFunc cli.ActionFunc) cli.ActionFunc {
	return WithErrorHandler(actionFunc)
}

// ConfiguredAction loads the configuration file, applies the command line
// overrides and hands the result to actionFunc.
func ConfiguredAction(actionFunc func(*cli.Context, *config.Config) error) cli.ActionFunc {
	return WithErrorHandler(func(c *cli.Context) error {
		cfg, err := LoadConfig(c)
		if err != nil {
			return err
		}
		return actionFunc(c, cfg)
	})
}

// WithErrorHandler turns plain errors into exit code 1.
func WithErrorHandler(actionFunc cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		err := actionFunc(c)
		if err == nil {
			return nil
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			return err
		}
		return cli.Exit(err.Error(), errorExitCode)
	}
}

func LoadConfig(c *cli.Context) (*config.Config, error) {
	// 已存在的环境变量优先
	if file := c.String(EnvFileFlag); file != "" {
		if err := godotenv.Load(file); err != nil {
			return nil, errors.Wrapf(err, "load env file %s", file)
		}
	}

	cfg := &config.Config{}
	if err := cfg.ReadFile(c.String(ConfigFlag)); err != nil {
		return nil, err
	}

	if c.IsSet(TgBotTokenFlag) || c.IsSet(TgChatIDFlag) || c.IsSet(TgHTTPProxyFlag) {
		if cfg.Telegram == nil {
			cfg.Telegram = &config.TelegramConfig{}
		}
		if v := c.String(TgBotTokenFlag); v != "" {
			cfg.Telegram.BotToken = v
		}
		if v := c.String(TgChatIDFlag); v != "" {
			cfg.Telegram.ChatID = v
		}
		if v := c.String(TgHTTPProxyFlag); v != "" {
			cfg.Telegram.HTTPProxy = v
		}
	}
	return cfg, nil
}
