package ddns

//go:generate go run go.uber.org/mock/mockgen@v0.5.0 -destination ddns_mock.go -package ddns . IDDNS

import (
	"context"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
)

// DnsRecord is a provider neutral view of one published record.
type DnsRecord struct {
	// A or AAAA
	Type  string
	// provider specific shape: subdomain for dnspod, full name for cloudflare
	Name  string
	Value string
	// dnspod numeric record id or cloudflare record id
	ID    string
}

// UpdateResult describes what Upsert did to the remote record.
type UpdateResult struct {
	Status consts.UpdateStatusType
	// value published before the call, empty when the record was created
	OldIP  string
	Record *DnsRecord
}

// Changed reports whether a mutating call was made.
func (r *UpdateResult) Changed() bool {
	return r != nil && r.Status != consts.UpdatedNothing
}

// IDDNS interface
type IDDNS interface {
	String() string
	// FetchCurrent returns the published record for the target, nil when none exists yet.
	FetchCurrent(ctx context.Context, target *config.DomainTarget) (*DnsRecord, error)
	// Upsert 添加或更新记录. Publishing a value equal to the remote one is a no-op.
	Upsert(ctx context.Context, target *config.DomainTarget, ip string) (*UpdateResult, error)
}

// Factory builds the provider serving one target.
type Factory func(target *config.DomainTarget) (IDDNS, error)
