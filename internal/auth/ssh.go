package auth

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// DefaultSSHUser is the user name used when the URL does not carry one.
const DefaultSSHUser = "git"

// SSHProvider authenticates SSH sources with a key file or the SSH agent.
type SSHProvider struct {
	// KeyPath is the private key file. When empty the SSH agent is used.
	KeyPath string

	// Passphrase decrypts an encrypted private key.
	Passphrase string

	// User is the remote user name (defaults to DefaultSSHUser).
	User string

	// HostKeyCallback verifies the server key. If nil, go-git's
	// known_hosts lookup is used.
	HostKeyCallback gossh.HostKeyCallback
}

// NewSSHKeyProvider creates a provider that loads a private key file.
func NewSSHKeyProvider(keyPath, passphrase string) *SSHProvider {
	return &SSHProvider{
		KeyPath:    keyPath,
		Passphrase: passphrase,
		User:       DefaultSSHUser,
	}
}

// NewSSHAgentProvider creates a provider backed by the running SSH agent.
func NewSSHAgentProvider() *SSHProvider {
	return &SSHProvider{User: DefaultSSHUser}
}

// InsecureIgnoreHostKey disables host key verification.
func (p *SSHProvider) InsecureIgnoreHostKey() *SSHProvider {
	p.HostKeyCallback = gossh.InsecureIgnoreHostKey() //nolint:gosec // opt-in via --insecure-skip-host-key
	return p
}

// Method returns public key auth for SSH URLs and nil for anything else.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *SSHProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	if Classify(remoteURL) != TransportSSH {
		return nil, nil
	}

	user := p.User
	if user == "" {
		user = DefaultSSHUser
	}

	if p.KeyPath == "" {
		auth, err := ssh.NewSSHAgentAuth(user)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSH agent auth: %w", err)
		}
		if p.HostKeyCallback != nil {
			auth.HostKeyCallback = p.HostKeyCallback
		}
		return auth, nil
	}

	if _, err := os.Stat(p.KeyPath); err != nil {
		return nil, fmt.Errorf("SSH private key %s: %w", p.KeyPath, err)
	}

	auth, err := ssh.NewPublicKeysFromFile(user, p.KeyPath, p.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key from file: %w", err)
	}
	if p.HostKeyCallback != nil {
		auth.HostKeyCallback = p.HostKeyCallback
	}
	return auth, nil
}
