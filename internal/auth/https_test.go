package auth

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenProvider_Method(t *testing.T) {
	tests := []struct {
		name      string
		provider  *TokenProvider
		remoteURL string
		wantAuth  bool
	}{
		{
			name:      "HTTPS URL returns auth",
			provider:  NewTokenProvider("s3cret"),
			remoteURL: "https://github.com/owner/repo.git",
			wantAuth:  true,
		},
		{
			name:      "SSH URL is declined",
			provider:  NewTokenProvider("s3cret"),
			remoteURL: "git@github.com:owner/repo.git",
			wantAuth:  false,
		},
		{
			name:      "allowed host matches",
			provider:  NewTokenProvider("s3cret").WithAllowedHosts("*.github.com"),
			remoteURL: "https://api.github.com/owner/repo.git",
			wantAuth:  true,
		},
		{
			name:      "host not allowed is declined",
			provider:  NewTokenProvider("s3cret").WithAllowedHosts("gitlab.com"),
			remoteURL: "https://github.com/owner/repo.git",
			wantAuth:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, err := tt.provider.Method(tt.remoteURL)
			require.NoError(t, err)

			if !tt.wantAuth {
				assert.Nil(t, method)
				return
			}

			basic, ok := method.(*http.BasicAuth)
			require.True(t, ok)
			assert.Equal(t, "s3cret", basic.Password)
		})
	}
}
