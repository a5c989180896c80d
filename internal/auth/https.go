package auth

import (
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// TokenProvider authenticates HTTPS sources with an access token.
type TokenProvider struct {
	auth *http.BasicAuth

	// AllowedHosts restricts the token to matching hosts ("*.example.com").
	// If empty, the token is offered to every HTTPS host.
	AllowedHosts []string
}

// NewTokenProvider creates an HTTPS provider sending token as the password.
// Most hosting providers accept any non-empty username alongside a token.
func NewTokenProvider(token string) *TokenProvider {
	return &TokenProvider{
		auth: &http.BasicAuth{
			Username: "gpat",
			Password: token,
		},
	}
}

// WithAllowedHosts restricts the hosts the token is sent to.
func (p *TokenProvider) WithAllowedHosts(hosts ...string) *TokenProvider {
	p.AllowedHosts = hosts
	return p
}

// Method returns basic auth for HTTPS URLs on allowed hosts and nil for
// anything else.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *TokenProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	if Classify(remoteURL) != TransportHTTPS {
		return nil, nil
	}

	if !hostAllowed(Host(remoteURL), p.AllowedHosts) {
		return nil, nil
	}

	return p.auth, nil
}
