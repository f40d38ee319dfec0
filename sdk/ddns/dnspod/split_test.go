package dnspod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDomain(t *testing.T) {
	tests := []struct {
		domain string
		sub    string
		root   string
	}{
		{"sub.example.com", "sub", "example.com"},
		{"blog.example.com", "blog", "example.com"},
		{"deep.nested.sub.example.com", "deep.nested.sub", "example.com"},
		{"auth.service.k8s.example.com", "auth.service.k8s", "example.com"},
		{"@.example.com", "@", "example.com"},
		{"example.com", "@", "example.com"},
		// known limitation of the two label heuristic
		{"test.co.uk", "test", "co.uk"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			sub, root, err := SplitDomain(tt.domain)
			require.NoError(t, err)
			assert.Equal(t, tt.sub, sub)
			assert.Equal(t, tt.root, root)
		})
	}
}

func TestSplitDomainInvalid(t *testing.T) {
	for _, domain := range []string{"", "localhost"} {
		_, _, err := SplitDomain(domain)
		assert.Error(t, err, domain)
	}
}
