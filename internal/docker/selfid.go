package docker

import (
	"os"
	"regexp"
	"strings"
	"sync"
)

// cgroupPath is the cgroup file inspected to discover our own container id.
const cgroupPath = "/proc/self/cgroup"

var containerIDPattern = regexp.MustCompile(`[0-9a-f]{64}`)

var (
	selfIDOnce sync.Once
	selfID     string
)

// SelfID returns the container id of the process itself, or "" when not
// running inside a container. Resolved once and cached for process lifetime.
//
// The primary source is the cgroup file, which on container hosts carries the
// full 64-hex container id. When that yields nothing, the hostname is used:
// Docker sets it to the short container id unless overridden.
func SelfID() string {
	selfIDOnce.Do(func() {
		selfID = resolveSelfID(cgroupPath)
	})
	return selfID
}

func resolveSelfID(path string) string {
	if data, err := os.ReadFile(path); err == nil {
		if id := parseCgroupContainerID(string(data)); id != "" {
			return id
		}
	}

	// Hostname fallback: a 12-hex hostname is almost certainly the short id
	if hostname, err := os.Hostname(); err == nil && looksLikeShortID(hostname) {
		return hostname
	}

	return ""
}

// parseCgroupContainerID extracts the first 64-hex container id from cgroup
// file contents.
func parseCgroupContainerID(contents string) string {
	for _, line := range strings.Split(contents, "\n") {
		if id := containerIDPattern.FindString(line); id != "" {
			return id
		}
	}
	return ""
}

func looksLikeShortID(s string) bool {
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// IsSelf reports whether the given container is the process's own container,
// comparing by id prefix in either direction so a short self id still matches
// a full inventory id.
func IsSelf(c Container, selfID string) bool {
	if selfID == "" {
		return false
	}
	return strings.HasPrefix(c.ID, selfID) || strings.HasPrefix(selfID, c.ID)
}
