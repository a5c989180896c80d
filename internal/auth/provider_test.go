package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		location string
		want     Transport
	}{
		{"repo.git", TransportLocal},
		{"/srv/history/repo.git", TransportLocal},
		{"./relative/repo", TransportLocal},
		{"https://github.com/owner/repo.git", TransportHTTPS},
		{"http://example.com/repo.git", TransportHTTPS},
		{"ssh://git@github.com/owner/repo.git", TransportSSH},
		{"git@github.com:owner/repo.git", TransportSSH},
		{"deploy@host.internal:repo", TransportSSH},
		{"file:///srv/history/repo.git", TransportFile},
		{"git://example.com/repo.git", TransportGit},
		{"user@host:", TransportLocal},
		{"@host:path", TransportLocal},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.location))
			assert.Equal(t, tt.want != TransportLocal, IsRemote(tt.location))
		})
	}
}

func TestTransportString(t *testing.T) {
	assert.Equal(t, "local", TransportLocal.String())
	assert.Equal(t, "https", TransportHTTPS.String())
	assert.Equal(t, "ssh", TransportSSH.String())
	assert.Equal(t, "file", TransportFile.String())
	assert.Equal(t, "git", TransportGit.String())
}

func TestHost(t *testing.T) {
	assert.Equal(t, "github.com", Host("https://github.com/owner/repo.git"))
	assert.Equal(t, "github.com", Host("ssh://git@github.com:22/owner/repo.git"))
	assert.Equal(t, "github.com", Host("git@github.com:owner/repo.git"))
	assert.Equal(t, "", Host("relative/path"))
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"github.com", "github.com", true},
		{"api.github.com", "*.github.com", true},
		{"github.com", "*.github.com", true},
		{"notgithub.com", "*.github.com", false},
		{"gitlab.example.com", "gitlab.*", true},
		{"gitlab", "gitlab.*", false},
		{"a.b.c", "*.*", false},
	}

	for _, tt := range tests {
		t.Run(tt.host+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.host, tt.pattern))
		})
	}
}
