package service

import (
	"context"
	"sync"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	iCache "github.com/jxo-me/ddnsync/core/cache"
	"github.com/jxo-me/ddnsync/core/ddns"
	"github.com/jxo-me/ddnsync/core/hook"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/core/resolver"
	sdkResolver "github.com/jxo-me/ddnsync/sdk/resolver"
	"github.com/pkg/errors"
)

// Target binds a domain to the provider and notifiers serving it.
type Target struct {
	Domain   *config.DomainTarget
	Provider ddns.IDDNS
	// optional
	Hook hook.IHook
}

// SyncResult is the outcome of one cycle of one target.
type SyncResult struct {
	Domain     string
	RecordType string
	Status     consts.UpdateStatusType
	Err        error
}

// task 单个域名的同步任务, cycles of one task never overlap.
type task struct {
	mu       sync.Mutex
	target   *config.DomainTarget
	provider ddns.IDDNS
	hook     hook.IHook
	resolver resolver.IResolver
	state    iCache.IIpCache
	logger   logger.ILogger
}

func (t *task) Sync(ctx context.Context) *SyncResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := &SyncResult{Domain: t.target.Domain, RecordType: t.target.RecordType}

	// 获取公网IP
	ip, err := t.resolver.Resolve(ctx, t.target.IPURL)
	if err == nil && !sdkResolver.MatchesFamily(ip, t.target.RecordType) {
		err = &sdkResolver.ResolutionError{
			URL: t.target.IPURL,
			Err: errors.Errorf("%s cannot be published as a %s record", ip, t.target.RecordType),
		}
	}
	if err != nil {
		t.logger.Errorf("获取公网IP失败, 跳过本次同步: %v", err)
		return result.fail(err)
	}
	t.logger.Debugf("当前公网IP: %s", ip)

	if t.state.NeedForce() {
		record, err := t.provider.FetchCurrent(ctx, t.target)
		if ddns.IsNotFound(err) {
			// 记录不存在, 按创建处理
			t.logger.Debugf("服务商无此记录, 将创建: %v", err)
			record, err = nil, nil
		}
		if err != nil {
			t.state.MarkForce()
			t.state.IncreaseFailedTimes()
			t.logProviderError("fetch record", err)
			return result.fail(err)
		}
		remote := ""
		if record != nil {
			remote = record.Value
		}
		t.logger.Debugf("强制读取服务商记录: %q", remote)
		t.state.Observe(remote)
	}

	if !t.state.Check(ip) {
		t.logger.Debugf("IP未变化: %s", ip)
		result.Status = consts.UpdatedNothing
		return result
	}

	updated, err := t.provider.Upsert(ctx, t.target, ip)
	if err != nil {
		// 保留旧状态, 下个周期重试
		t.state.IncreaseFailedTimes()
		t.logProviderError("upsert record", err)
		return result.fail(err)
	}
	t.state.Update(ip)
	result.Status = updated.Status
	if !updated.Changed() {
		return result
	}

	t.logger.Infof("更新域名解析成功 (%s): %s -> %s", updated.Status, updated.OldIP, ip)
	if t.hook != nil {
		_ = t.hook.ExecHook(ctx, &hook.Event{
			Domain: t.target.Domain,
			NewIP:  ip,
			OldIP:  updated.OldIP,
			Status: updated.Status,
		})
	}
	return result
}

func (t *task) logProviderError(op string, err error) {
	failed := t.state.GetFailedTimes()
	switch ddns.KindOf(err) {
	case ddns.KindAuth:
		t.logger.Errorf("%s: 认证失败, 请检查 token (failed %d times): %v", op, failed, err)
	case ddns.KindRateLimited:
		t.logger.Warnf("%s: 请求被限流, 下个周期重试 (failed %d times): %v", op, failed, err)
	default:
		t.logger.Errorf("%s failed (failed %d times): %v", op, failed, err)
	}
}

func (r *SyncResult) fail(err error) *SyncResult {
	r.Status = consts.UpdatedFailed
	r.Err = err
	return r
}
