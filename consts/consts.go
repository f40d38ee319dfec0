package consts

// UpdateStatusType 更新状态
type UpdateStatusType string

const (
	// UpdatedNothing 未改变
	UpdatedNothing UpdateStatusType = "UnChanged"
	// UpdatedFailed 更新失败
	UpdatedFailed UpdateStatusType = "Failure"
	// UpdatedSuccess 更新成功
	UpdatedSuccess UpdateStatusType = "Success"
	// UpdatedCreated 新建记录
	UpdatedCreated UpdateStatusType = "Created"
)

// Provider codes accepted in the configuration.
const (
	ProviderDnspod     = "dnspod"
	ProviderCloudflare = "cloudflare"
)

const (
	RecordTypeA    = "A"
	RecordTypeAAAA = "AAAA"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"
	DefaultDDNSName     = "default"
	DefaultUserAgent    = "ddnsync/1.0 (https://github.com/jxo-me/ddnsync)"
)

const (
	DefaultSleepSecs              = 120
	DefaultForceGetRecordInterval = 5
	DefaultConcurrency            = 1
	DefaultHookTimeoutSecs        = 60
	DefaultIPURL                  = "http://whatismyip.akamai.com"
	DefaultProvider               = ProviderCloudflare
	DefaultConfigFile             = "config.toml"
	ResolveTimeout                = 10
	ProviderTimeout               = 30
)

const (
	StatusReady   int32 = 0  // Job or Timer is ready for running.
	StatusRunning int32 = 1  // Job or Timer is already running.
	StatusStopped int32 = 2  // Job or Timer is stopped.
	StatusClosed  int32 = -1 // Job or Timer is closed and waiting to be deleted.
)
