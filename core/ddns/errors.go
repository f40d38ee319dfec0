package ddns

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindAuth
	KindNotFound
	KindRateLimited
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "network"
	}
}

// ProviderError is returned by every IDDNS operation that fails.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s error: %s", e.Provider, e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, kind ErrorKind, err error, format string, args ...any) *ProviderError {
	return &ProviderError{
		Kind:     kind,
		Provider: provider,
		Message:  fmt.Sprintf(format, args...),
		Err:      err,
	}
}

// KindOf returns the kind of a ProviderError anywhere in the chain, KindNetwork otherwise.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindNetwork
}

func IsNotFound(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == KindNotFound
}
