package resolver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/internal/util"
	"github.com/pkg/errors"
)

// ResolutionError wraps every failure to learn the public address.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve public ip from %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// HTTPResolver reads the address as the plain text body of a GET.
type HTTPResolver struct {
	client *http.Client
}

type Option func(*HTTPResolver)

func WithHTTPClient(client *http.Client) Option {
	return func(r *HTTPResolver) {
		r.client = client
	}
}

func New(opts ...Option) *HTTPResolver {
	r := &HTTPResolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		// 直连，代理出口的地址没有意义
		r.client = util.CreateNoProxyHTTPClient(consts.ResolveTimeout * time.Second)
	}
	return r
}

func (r *HTTPResolver) Resolve(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &ResolutionError{URL: url, Err: err}
	}
	req.Header.Set(consts.HeaderUserAgent, consts.DefaultUserAgent)

	resp, err := r.client.Do(req)
	body, err := util.GetHTTPResponseOrg(resp, url, err)
	if err != nil {
		return "", &ResolutionError{URL: url, Err: err}
	}

	addr := strings.TrimSpace(string(body))
	if addr == "" {
		return "", &ResolutionError{URL: url, Err: errors.New("empty response body")}
	}
	if net.ParseIP(addr) == nil {
		return "", &ResolutionError{URL: url, Err: errors.Errorf("%q is not an ip address", truncate(addr, 64))}
	}
	return addr, nil
}

// MatchesFamily reports whether addr fits the record type, IPv4 for A and IPv6 for AAAA.
func MatchesFamily(addr, recordType string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	isV4 := ip.To4() != nil
	if recordType == consts.RecordTypeAAAA {
		return !isV4
	}
	return isV4
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
