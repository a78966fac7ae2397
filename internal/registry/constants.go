package registry

import "time"

const (
	// DefaultBaseURL is the Docker Hub v2 API endpoint
	DefaultBaseURL = "https://hub.docker.com/v2"

	// DefaultHTTPTimeout bounds each page request so an unreachable registry
	// cannot stall a check cycle indefinitely
	DefaultHTTPTimeout = 5 * time.Second

	// DefaultRateLimitInterval is the minimum spacing between page requests
	DefaultRateLimitInterval = 100 * time.Millisecond

	// PageSize is the number of tags requested per page
	PageSize = 10

	// MaxPages caps the number of pages fetched per repository
	MaxPages = 5

	// userAgent identifies tagwatch to the registry
	userAgent = "tagwatch/1.0"
)
