package resolver

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ipURL = "http://ip.example.test/"

func newTestResolver() (*HTTPResolver, *httpmock.MockTransport) {
	mt := httpmock.NewMockTransport()
	return New(WithHTTPClient(&http.Client{Transport: mt})), mt
}

func TestResolveTrimsBody(t *testing.T) {
	r, mt := newTestResolver()
	mt.RegisterResponder(http.MethodGet, ipURL, httpmock.NewStringResponder(http.StatusOK, "  203.0.113.7\n"))

	ip, err := r.Resolve(context.Background(), ipURL)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestResolveIPv6(t *testing.T) {
	r, mt := newTestResolver()
	mt.RegisterResponder(http.MethodGet, ipURL, httpmock.NewStringResponder(http.StatusOK, "2001:db8::1\n"))

	ip, err := r.Resolve(context.Background(), ipURL)
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", ip)
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"empty body", httpmock.NewStringResponder(http.StatusOK, " \n")},
		{"not an ip", httpmock.NewStringResponder(http.StatusOK, "<html>hello</html>")},
		{"server error", httpmock.NewStringResponder(http.StatusBadGateway, "1.2.3.4")},
		{"transport error", httpmock.NewErrorResponder(errors.New("connection refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mt := newTestResolver()
			mt.RegisterResponder(http.MethodGet, ipURL, tt.responder)

			_, err := r.Resolve(context.Background(), ipURL)
			require.Error(t, err)
			var resolveErr *ResolutionError
			require.True(t, errors.As(err, &resolveErr))
			assert.Equal(t, ipURL, resolveErr.URL)
		})
	}
}

func TestMatchesFamily(t *testing.T) {
	assert.True(t, MatchesFamily("1.2.3.4", "A"))
	assert.False(t, MatchesFamily("1.2.3.4", "AAAA"))
	assert.True(t, MatchesFamily("2001:db8::1", "AAAA"))
	assert.False(t, MatchesFamily("2001:db8::1", "A"))
	assert.False(t, MatchesFamily("nope", "A"))
}
