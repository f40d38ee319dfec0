package cache

// IIpCache 单个域名的同步状态
type IIpCache interface {
	// NeedForce advances the tick counter and reports whether this tick must
	// re-read the remote record.
	NeedForce() bool
	// MarkForce makes the next NeedForce return true.
	MarkForce()
	// Observe records the remote value read by a forced fetch.
	Observe(remoteAddr string)
	// Update records a successfully published address, restarts the counter
	// and clears the failed times.
	Update(newAddr string)
	Check(newAddr string) bool
	IncreaseFailedTimes()
	GetFailedTimes() int
	GetTimes() int
	GetAddr() string
	Initialized() bool
}
