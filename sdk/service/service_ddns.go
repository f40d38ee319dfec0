package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/core/resolver"
	"github.com/jxo-me/ddnsync/sdk/cache"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const Name = "ddns"

type DDNSService struct {
	Delay       time.Duration
	concurrency int
	tasks       []*task
	stop        chan chan struct{}
	status      atomic.Int32
	mu          sync.Mutex
	cancel      context.CancelFunc
	hash        string
	logger      logger.ILogger
}

func (s *DDNSService) String() string {
	return Name
}

// NewDDNS builds one task per target, each with its own update state.
func NewDDNS(conf *config.Config, targets []Target, res resolver.IResolver, log logger.ILogger) *DDNSService {
	if log == nil {
		log = logger.Default()
	}
	concurrency := conf.Concurrency
	if concurrency < 1 {
		concurrency = consts.DefaultConcurrency
	}
	delay := time.Duration(conf.SleepSecs) * time.Second
	if delay <= 0 {
		delay = consts.DefaultSleepSecs * time.Second
	}

	s := &DDNSService{
		Delay:       delay,
		concurrency: concurrency,
		stop:        make(chan chan struct{}),
		logger:      log,
	}
	s.status.Store(consts.StatusReady)

	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%d\n", conf.SleepSecs, conf.ForceGetRecordInterval, concurrency)
	for _, target := range targets {
		d := target.Domain
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s\n", d.Domain, d.Provider, d.RecordType, d.IPURL, d.AccountID, d.HookCommand)
		s.tasks = append(s.tasks, &task{
			target:   d,
			provider: target.Provider,
			hook:     target.Hook,
			resolver: res,
			state:    cache.NewIpCache(conf.ForceGetRecordInterval),
			logger: log.WithFields(map[string]any{
				"domain":   d.Domain,
				"type":     d.RecordType,
				"provider": target.Provider.String(),
			}),
		})
	}
	s.hash = hex.EncodeToString(h.Sum(nil))
	return s
}

func (s *DDNSService) Hash() string {
	return s.hash
}

// RunOnce runs one cycle of every target, at most concurrency of them at a time.
func (s *DDNSService) RunOnce(ctx context.Context) []*SyncResult {
	results := make([]*SyncResult, len(s.tasks))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, t := range s.tasks {
		g.Go(func() error {
			results[i] = t.Sync(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Worker runs a cycle immediately, then sleeps Delay after each cycle until stopped.
func (s *DDNSService) Worker(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			if s.status.Load() == consts.StatusRunning {
				s.logger.Debugf("%s DDNS service is running!", s.String())
				s.RunOnce(ctx)
				s.logger.Debugf("sleeping for %s", s.Delay)
			}
			timer.Reset(s.Delay)
		// call to stop polling
		case confirm := <-s.stop:
			close(confirm)
			s.logger.Debugf("%s DDNS service has been manually stopped!", s.String())
			return nil
		}
	}
}

// Start blocks until Stop is called.
func (s *DDNSService) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if !s.status.CompareAndSwap(consts.StatusReady, consts.StatusRunning) {
		return errors.Errorf("%s DDNS service already started", s.String())
	}
	s.logger.Infof("%s DDNS service started with %d targets, interval %s", s.String(), len(s.tasks), s.Delay)
	return s.Worker(ctx)
}

// Stop abandons in-flight requests and waits for the worker to exit.
func (s *DDNSService) Stop() error {
	// 尚未启动, 之后的 Start 直接返回
	if s.status.CompareAndSwap(consts.StatusReady, consts.StatusClosed) {
		return nil
	}
	if !s.status.CompareAndSwap(consts.StatusRunning, consts.StatusStopped) {
		return nil
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	confirm := make(chan struct{})
	s.stop <- confirm
	<-confirm
	s.status.Store(consts.StatusClosed)
	return nil
}
