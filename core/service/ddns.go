package service

// IDDNSService is a long running sync loop managed by overwatch.
type IDDNSService interface {
	String() string
	// Hash identifies the effective configuration, equal hashes mean nothing to restart.
	Hash() string
	// Start blocks until Stop is called.
	Start() error
	Stop() error
}
