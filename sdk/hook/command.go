package hook

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/hook"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/pkg/errors"
)

const CommandCode = "command"

// CommandHook 执行用户配置的 shell 命令，通过环境变量 DOMAIN, NEW_IP, OLD_IP 传递结果
type CommandHook struct {
	command string
	timeout time.Duration
	logger  logger.ILogger
}

func NewCommandHook(command string, timeout time.Duration, log logger.ILogger) *CommandHook {
	if timeout <= 0 {
		timeout = consts.DefaultHookTimeoutSecs * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	return &CommandHook{
		command: command,
		timeout: timeout,
		logger:  log,
	}
}

func (h *CommandHook) String() string {
	return CommandCode
}

func (h *CommandHook) ExecHook(ctx context.Context, event *hook.Event) error {
	if strings.TrimSpace(h.command) == "" {
		return nil
	}
	h.logger.Infof("执行 hook 命令 %s: %s", event.Domain, h.command)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	name, args := shellCommand(h.command)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(),
		"DOMAIN="+event.Domain,
		"NEW_IP="+event.NewIP,
		"OLD_IP="+event.OldIP,
	)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		h.logger.Infof("hook stdout: %s", out)
	}
	if out := strings.TrimSpace(stderr.String()); out != "" {
		h.logger.Infof("hook stderr: %s", out)
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.Errorf("timed out after %s", h.timeout)
		}
		return &HookError{Hook: CommandCode, Domain: event.Domain, Err: err}
	}

	h.logger.Infof("hook 命令执行成功: %s", event.Domain)
	return nil
}

func shellCommand(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "powershell", []string{"-ExecutionPolicy", "Bypass", "-Command", command}
	}
	if _, err := exec.LookPath("bash"); err == nil {
		return "bash", []string{"-c", command}
	}
	return "sh", []string{"-c", command}
}
