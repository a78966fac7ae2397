package docker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitImageRef(t *testing.T) {
	tests := []struct {
		ref        string
		repository string
		tag        string
	}{
		{"nginx:1.25", "nginx", "1.25"},
		{"nginx", "nginx", "latest"},
		{"linuxserver/plex:1.40.0", "linuxserver/plex", "1.40.0"},
		{"registry.local:5000/app:2.1", "registry.local:5000/app", "2.1"},
		{"registry.local:5000/app", "registry.local:5000/app", "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			repo, tag := SplitImageRef(tt.ref)
			assert.Equal(t, tt.repository, repo)
			assert.Equal(t, tt.tag, tag)
		})
	}
}

func TestIsHubRepository(t *testing.T) {
	tests := []struct {
		repository string
		expected   bool
	}{
		{"nginx", true},
		{"library/postgres", true},
		{"linuxserver/plex", true},
		{"ghcr.io/owner/app", false},
		{"lscr.io/linuxserver/plex", false},
		{"registry.local:5000/app", false},
		{"localhost:5000/app", false},
	}

	for _, tt := range tests {
		t.Run(tt.repository, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsHubRepository(tt.repository))
		})
	}
}

func TestContainerImage(t *testing.T) {
	c := Container{Repository: "nginx", Tag: "1.25"}
	assert.Equal(t, "nginx:1.25", c.Image())
}

func TestParseCgroupContainerID(t *testing.T) {
	fullID := strings.Repeat("ab12", 16)

	tests := []struct {
		name     string
		contents string
		expected string
	}{
		{
			name:     "cgroup v1 docker path",
			contents: "12:pids:/docker/" + fullID + "\n11:memory:/docker/" + fullID + "\n",
			expected: fullID,
		},
		{
			name:     "cgroup v2 scope path",
			contents: "0::/system.slice/docker-" + fullID + ".scope\n",
			expected: fullID,
		},
		{
			name:     "host process",
			contents: "0::/init.scope\n",
			expected: "",
		},
		{
			name:     "empty file",
			contents: "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCgroupContainerID(tt.contents))
		})
	}
}

func TestLooksLikeShortID(t *testing.T) {
	assert.True(t, looksLikeShortID("0123456789ab"))
	assert.False(t, looksLikeShortID("my-hostname1"))
	assert.False(t, looksLikeShortID("0123456789"))
	assert.False(t, looksLikeShortID("0123456789ABCD"))
}

func TestIsSelf(t *testing.T) {
	fullID := strings.Repeat("ab12", 16)
	shortID := fullID[:12]

	c := Container{ID: fullID}

	assert.True(t, IsSelf(c, fullID))
	assert.True(t, IsSelf(c, shortID), "short self id matches full inventory id")
	assert.True(t, IsSelf(Container{ID: shortID}, fullID), "short inventory id matches full self id")
	assert.False(t, IsSelf(c, "deadbeef0000"))
	assert.False(t, IsSelf(c, ""), "empty self id never matches")
}
