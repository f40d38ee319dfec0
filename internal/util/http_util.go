package util

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPStatusError is returned for any non 2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, string(e.Body))
}

// CreateHTTPClient returns a client honouring the proxy environment.
func CreateHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// CreateNoProxyHTTPClient returns a client that never goes through a proxy,
// so the address seen by the remote side is the host's own.
func CreateNoProxyHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: nil,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// GetHTTPResponseOrg reads the whole body, failing on transport errors and non 2xx statuses.
func GetHTTPResponseOrg(resp *http.Response, url string, err error) ([]byte, error) {
	if err != nil {
		return nil, errors.Wrapf(err, "request %s failed", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read response of %s failed", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

// GetHTTPResponse is GetHTTPResponseOrg followed by a json decode into result.
func GetHTTPResponse(resp *http.Response, url string, err error, result any) error {
	body, err := GetHTTPResponseOrg(resp, url, err)
	if err != nil {
		return err
	}
	if len(body) == 0 || result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{URL: url, Body: body, Err: err}
	}
	return nil
}

// DecodeError means the remote answered but not with the expected JSON.
type DecodeError struct {
	URL  string
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response of %s failed: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
