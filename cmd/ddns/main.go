package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/judwhite/go-svc"
	"github.com/jxo-me/ddnsync/cmd/ddns/cliutil"
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/urfave/cli/v2"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
)

func main() {
	// -v is taken by --verbose
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	app := &cli.App{}
	app.Name = "ddns"
	app.Usage = "keep DNSPod and Cloudflare records in sync with this host's public IP"
	app.UsageText = "ddns [--config FILE] [--verbose] [--tg-bot-token TOKEN --tg-chat-id ID]"
	app.Version = fmt.Sprintf("%s (built %s, %s %s/%s)", Version, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Flags = cliutil.Flags()
	app.Action = cliutil.ConfiguredAction(action)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func action(c *cli.Context, cfg *config.Config) error {
	if format := c.String(cliutil.OutputFlag); format != "" {
		return cfg.Write(os.Stdout, format)
	}

	logger.SetDefault(logFromConfig(cfg.Log, c.Bool(cliutil.VerboseFlag)))
	config.Set(cfg)

	// blocks until SIGINT or SIGTERM
	return svc.Run(&program{})
}
