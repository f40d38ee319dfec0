package cache

import (
	"sync"

	"github.com/jxo-me/ddnsync/consts"
)

// IpCache 上次IP缓存
type IpCache struct {
	mu           sync.Mutex
	interval     int
	addr         string // 缓存地址
	times        int    // 距上次强制读取的周期数
	timesFailed  int    // 连续失败次数
	initialized  bool
	forcePending bool
}

// NewIpCache interval is the number of ticks between forced reads, values below 1 use the default.
func NewIpCache(interval int) *IpCache {
	if interval < 1 {
		interval = consts.DefaultForceGetRecordInterval
	}
	return &IpCache{interval: interval}
}

func (d *IpCache) NeedForce() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.times++
	if !d.initialized || d.forcePending || d.times >= d.interval {
		d.times = 0
		return true
	}
	return false
}

func (d *IpCache) MarkForce() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forcePending = true
}

func (d *IpCache) Observe(remoteAddr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addr = remoteAddr
	d.initialized = true
	d.forcePending = false
}

func (d *IpCache) Update(newAddr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addr = newAddr
	d.times = 0
	d.timesFailed = 0
	d.initialized = true
	d.forcePending = false
}

// Check 地址是否改变
func (d *IpCache) Check(newAddr string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.initialized || d.addr != newAddr
}

func (d *IpCache) IncreaseFailedTimes() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timesFailed++
}

func (d *IpCache) GetFailedTimes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timesFailed
}

func (d *IpCache) GetTimes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.times
}

func (d *IpCache) GetAddr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr
}

func (d *IpCache) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}
