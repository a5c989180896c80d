package auth

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	method transport.AuthMethod
	err    error
	calls  int
}

//nolint:ireturn // mirrors Provider
func (s *stubProvider) Method(string) (transport.AuthMethod, error) {
	s.calls++
	return s.method, s.err
}

func TestChain_Method(t *testing.T) {
	basic := &http.BasicAuth{Username: "u", Password: "p"}

	t.Run("first offer wins", func(t *testing.T) {
		first := &stubProvider{}
		second := &stubProvider{method: basic}
		third := &stubProvider{method: &http.BasicAuth{}}

		method, err := Chain{first, second, third}.Method("https://example.com/r.git")
		require.NoError(t, err)
		assert.Same(t, basic, method)
		assert.Equal(t, 0, third.calls)
	})

	t.Run("error surfaces when nothing offers", func(t *testing.T) {
		method, err := Chain{&stubProvider{err: errors.New("agent down")}, &stubProvider{}}.Method("x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent down")
		assert.Nil(t, method)
	})

	t.Run("later offer hides earlier error", func(t *testing.T) {
		method, err := Chain{&stubProvider{err: errors.New("boom")}, &stubProvider{method: basic}}.Method("x")
		require.NoError(t, err)
		assert.Same(t, basic, method)
	})

	t.Run("empty chain", func(t *testing.T) {
		method, err := Chain{}.Method("x")
		require.NoError(t, err)
		assert.Nil(t, method)
	})
}

func TestCredentials_FromEnv(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvSSHKey, "/env/key")
	t.Setenv(EnvPassphrase, "env-phrase")
	t.Setenv(envSSHAgent, "/tmp/agent.sock")

	creds := Credentials{Token: "flag-token"}.FromEnv()
	assert.Equal(t, "flag-token", creds.Token)
	assert.Equal(t, "/env/key", creds.SSHKeyPath)
	assert.Equal(t, "env-phrase", creds.SSHPassphrase)
	assert.False(t, creds.UseSSHAgent, "a key file takes precedence over the agent")
}

func TestCredentials_FromEnvAgent(t *testing.T) {
	t.Setenv(EnvToken, "")
	t.Setenv(EnvSSHKey, "")
	t.Setenv(envSSHAgent, "/tmp/agent.sock")

	creds := Credentials{}.FromEnv()
	assert.True(t, creds.UseSSHAgent)
}

func TestCredentials_Provider(t *testing.T) {
	assert.Nil(t, Credentials{}.Provider())

	p := Credentials{Token: "t", SSHKeyPath: "/k", InsecureSkipHostKey: true}.Provider()
	chain, ok := p.(Chain)
	require.True(t, ok)
	require.Len(t, chain, 2)

	assert.IsType(t, &TokenProvider{}, chain[0])
	ssh, ok := chain[1].(*SSHProvider)
	require.True(t, ok)
	assert.Equal(t, "/k", ssh.KeyPath)
	assert.NotNil(t, ssh.HostKeyCallback)

	agentOnly, ok := Credentials{UseSSHAgent: true}.Provider().(Chain)
	require.True(t, ok)
	require.Len(t, agentOnly, 1)
	assert.Empty(t, agentOnly[0].(*SSHProvider).KeyPath)
}

func TestCredentials_TokenHosts(t *testing.T) {
	provider := Credentials{Token: "s3cret", TokenHosts: []string{"*.example.com"}}.Provider()
	require.NotNil(t, provider)

	method, err := provider.Method("https://git.example.com/team/repo.git")
	require.NoError(t, err)
	assert.NotNil(t, method)

	method, err = provider.Method("https://elsewhere.org/team/repo.git")
	require.NoError(t, err)
	assert.Nil(t, method, "the token stays away from other hosts")
}
