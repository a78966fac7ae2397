package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// Service implements the Client interface using the Docker SDK.
type Service struct {
	cli *client.Client
}

// NewService creates a new Docker service that connects to the Docker socket.
// It uses the default Docker host from environment variables or defaults to
// unix:///var/run/docker.sock on Unix systems.
func NewService() (*Service, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &Service{cli: cli}, nil
}

// ListRunningContainers retrieves the running containers from the Docker
// daemon. Stopped containers are not relevant to update checks.
func (s *Service) ListRunningContainers(ctx context.Context) ([]Container, error) {
	containers, err := s.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	result := make([]Container, 0, len(containers))
	for _, c := range containers {
		result = append(result, s.convertContainer(c))
	}

	return result, nil
}

// Close releases resources held by the Docker client.
func (s *Service) Close() error {
	if s.cli != nil {
		return s.cli.Close()
	}
	return nil
}

// convertContainer transforms the Docker SDK container type into our domain model.
func (s *Service) convertContainer(c types.Container) Container {
	// Container names start with '/', so we trim it
	name := ""
	names := make([]string, 0, len(c.Names))
	for _, n := range c.Names {
		names = append(names, strings.TrimPrefix(n, "/"))
	}
	if len(names) > 0 {
		name = names[0]
	}

	repository, tag := SplitImageRef(c.Image)

	return Container{
		ID:         c.ID,
		Name:       name,
		Names:      names,
		Repository: repository,
		Tag:        tag,
		State:      c.State,
		Status:     c.Status,
	}
}
