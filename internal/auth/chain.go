package auth

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Environment variables read by FromEnv.
const (
	EnvToken      = "GPAT_GIT_TOKEN"
	EnvSSHKey     = "GPAT_SSH_KEY"
	EnvPassphrase = "GPAT_SSH_PASSPHRASE"
	envSSHAgent   = "SSH_AUTH_SOCK"
)

// Chain tries providers in order and returns the first method offered.
type Chain []Provider

// Method returns the first non-nil method. Provider errors are returned only
// when no later provider offers a method.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (c Chain) Method(remoteURL string) (transport.AuthMethod, error) {
	var lastErr error

	for i, p := range c {
		method, err := p.Method(remoteURL)
		if err != nil {
			lastErr = fmt.Errorf("provider %d failed: %w", i, err)
			continue
		}
		if method != nil {
			return method, nil
		}
	}

	return nil, lastErr
}

// Credentials collects the credential sources a run may use.
type Credentials struct {
	Token               string
	TokenHosts          []string // hosts the token may be sent to; empty allows any
	SSHKeyPath          string
	SSHPassphrase       string
	UseSSHAgent         bool
	InsecureSkipHostKey bool
}

// FromEnv fills unset fields from the GPAT_* environment variables and
// enables the SSH agent when SSH_AUTH_SOCK is set.
func (c Credentials) FromEnv() Credentials {
	if c.Token == "" {
		c.Token = os.Getenv(EnvToken)
	}
	if c.SSHKeyPath == "" {
		c.SSHKeyPath = os.Getenv(EnvSSHKey)
	}
	if c.SSHPassphrase == "" {
		c.SSHPassphrase = os.Getenv(EnvPassphrase)
	}
	if !c.UseSSHAgent && c.SSHKeyPath == "" {
		c.UseSSHAgent = os.Getenv(envSSHAgent) != ""
	}
	return c
}

// Provider builds the chain for these credentials. It returns nil when no
// credential source is configured.
//
//nolint:ireturn // callers treat a nil Provider as anonymous access
func (c Credentials) Provider() Provider {
	var chain Chain

	if c.Token != "" {
		chain = append(chain, NewTokenProvider(c.Token).WithAllowedHosts(c.TokenHosts...))
	}

	var ssh *SSHProvider
	switch {
	case c.SSHKeyPath != "":
		ssh = NewSSHKeyProvider(c.SSHKeyPath, c.SSHPassphrase)
	case c.UseSSHAgent:
		ssh = NewSSHAgentProvider()
	}
	if ssh != nil {
		if c.InsecureSkipHostKey {
			ssh.InsecureIgnoreHostKey()
		}
		chain = append(chain, ssh)
	}

	if len(chain) == 0 {
		return nil
	}
	return chain
}
