// Package auth resolves credentials for cloning remote export sources.
// It provides scheme matching on top of go-git's existing auth methods.
package auth

import (
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Provider returns go-git's transport.AuthMethod for a remote URL.
type Provider interface {
	// Method returns the appropriate transport.AuthMethod for the given remote URL.
	// Returns nil if the provider has nothing to offer for this URL.
	// Returns an error if authentication setup fails.
	Method(remoteURL string) (transport.AuthMethod, error)
}

// Transport classifies how a source location is reached.
type Transport int

const (
	// TransportLocal is a plain filesystem path.
	TransportLocal Transport = iota
	// TransportHTTPS is an http:// or https:// URL.
	TransportHTTPS
	// TransportSSH is an ssh:// URL or scp-like user@host:path.
	TransportSSH
	// TransportFile is a file:// URL.
	TransportFile
	// TransportGit is the unauthenticated git:// protocol.
	TransportGit
)

// String returns the transport name.
func (t Transport) String() string {
	switch t {
	case TransportHTTPS:
		return "https"
	case TransportSSH:
		return "ssh"
	case TransportFile:
		return "file"
	case TransportGit:
		return "git"
	default:
		return "local"
	}
}

// Classify reports the transport a source location uses.
func Classify(location string) Transport {
	if isSCPLike(location) {
		return TransportSSH
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return TransportLocal
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return TransportHTTPS
	case "ssh", "git+ssh", "ssh+git":
		return TransportSSH
	case "file":
		return TransportFile
	case "git":
		return TransportGit
	default:
		return TransportLocal
	}
}

// IsRemote reports whether the location must be cloned rather than opened.
func IsRemote(location string) bool {
	return Classify(location) != TransportLocal
}

// Host extracts the host of a remote location, without user or port.
func Host(location string) string {
	if isSCPLike(location) {
		rest := location[strings.Index(location, "@")+1:]
		return rest[:strings.Index(rest, ":")]
	}

	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// isSCPLike matches user@host:path, the short ssh form git accepts.
func isSCPLike(location string) bool {
	if strings.Contains(location, "://") {
		return false
	}

	at := strings.Index(location, "@")
	if at <= 0 {
		return false
	}

	colon := strings.Index(location[at:], ":")
	if colon <= 1 {
		return false
	}

	// Reject Windows style drive letters and empty paths.
	return at+colon+1 < len(location)
}

// matchesPattern checks if a host matches a pattern with a single "*" wildcard.
func matchesPattern(host, pattern string) bool {
	if host == pattern {
		return true
	}

	if strings.Count(pattern, "*") != 1 {
		return false
	}

	if strings.HasPrefix(pattern, "*.") {
		suffix := strings.TrimPrefix(pattern, "*.")
		return strings.HasSuffix(host, "."+suffix) || host == suffix
	}

	if strings.HasSuffix(pattern, ".*") {
		prefix := strings.TrimSuffix(pattern, ".*")
		return strings.HasPrefix(host, prefix+".")
	}

	return false
}

// hostAllowed reports whether host matches one of the patterns. An empty
// pattern list allows every host.
func hostAllowed(host string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, pattern := range patterns {
		if matchesPattern(host, pattern) {
			return true
		}
	}
	return false
}
