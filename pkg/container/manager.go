// Package container manages the shared code execution container. Sessions
// ensure it is running before execution starts; it is stopped once when the
// server shuts down, so concurrent sessions never pull it out from under
// each other.
package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// stopTimeoutSeconds bounds graceful container shutdown.
const stopTimeoutSeconds = 10

// Manager owns one named container running a keep-alive command. Agents exec
// into it; the manager only handles the lifecycle.
type Manager struct {
	docker  *client.Client
	image   string
	name    string
	workDir string

	mu          sync.Mutex
	containerID string

	logger *slog.Logger
}

// NewManager creates a manager and verifies the Docker daemon is reachable.
func NewManager(ctx context.Context, imageRef, name, workDir string) (*Manager, error) {
	docker, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	if _, err := docker.Ping(ctx); err != nil {
		_ = docker.Close()
		return nil, fmt.Errorf("docker daemon not reachable: %w", err)
	}
	return &Manager{
		docker:  docker,
		image:   imageRef,
		name:    name,
		workDir: workDir,
		logger:  slog.With("component", "container", "container_name", name),
	}, nil
}

// EnsureRunning makes sure the named container exists and is running,
// creating and starting it if necessary. Idempotent.
func (m *Manager) EnsureRunning(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.find(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		m.containerID = existing.ID
		if existing.State == "running" {
			m.logger.Debug("Container already running", "container_id", existing.ID)
			return nil
		}
		m.logger.Info("Starting existing container", "container_id", existing.ID)
		if err := m.docker.ContainerStart(ctx, existing.ID, container.StartOptions{}); err != nil {
			return fmt.Errorf("start container: %w", err)
		}
		return nil
	}

	if err := m.pullImage(ctx); err != nil {
		return err
	}

	resp, err := m.docker.ContainerCreate(ctx,
		&container.Config{
			Image:      m.image,
			Cmd:        []string{"sleep", "infinity"},
			WorkingDir: m.workDir,
		},
		&container.HostConfig{AutoRemove: false},
		nil, nil, m.name)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	m.containerID = resp.ID

	if err := m.docker.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	m.logger.Info("Container created and started", "container_id", resp.ID, "image", m.image)
	return nil
}

// IsRunning reports whether the managed container is currently running.
func (m *Manager) IsRunning(ctx context.Context) (bool, error) {
	id := m.ContainerID()
	if id == "" {
		return false, nil
	}
	inspect, err := m.docker.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("inspect container: %w", err)
	}
	return inspect.State.Running, nil
}

// Stop gracefully stops the container. A missing container is not an error.
func (m *Manager) Stop(ctx context.Context) error {
	id := m.ContainerID()
	if id == "" {
		return nil
	}
	timeout := stopTimeoutSeconds
	if err := m.docker.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("stop container: %w", err)
	}
	m.logger.Info("Container stopped", "container_id", id)
	return nil
}

// Remove force-removes the container.
func (m *Manager) Remove(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.containerID == "" {
		return nil
	}
	if err := m.docker.ContainerRemove(ctx, m.containerID, container.RemoveOptions{Force: true}); err != nil {
		if client.IsErrNotFound(err) {
			m.containerID = ""
			return nil
		}
		return fmt.Errorf("remove container: %w", err)
	}
	m.logger.Info("Container removed", "container_id", m.containerID)
	m.containerID = ""
	return nil
}

// Logs returns the last tail lines of container output. tail <= 0 returns
// everything.
func (m *Manager) Logs(ctx context.Context, tail int) (string, error) {
	id := m.ContainerID()
	if id == "" {
		return "", fmt.Errorf("no container")
	}
	options := container.LogsOptions{ShowStdout: true, ShowStderr: true}
	if tail > 0 {
		options.Tail = fmt.Sprintf("%d", tail)
	}
	reader, err := m.docker.ContainerLogs(ctx, id, options)
	if err != nil {
		return "", fmt.Errorf("get container logs: %w", err)
	}
	defer reader.Close()

	var buf strings.Builder
	if _, err := stdcopy.StdCopy(&buf, &buf, reader); err != nil && err != io.EOF {
		return "", fmt.Errorf("read container logs: %w", err)
	}
	return buf.String(), nil
}

// ExecResult holds the output of one command run inside the container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Exec runs a command in the container's working directory and waits for it.
func (m *Manager) Exec(ctx context.Context, cmd []string) (*ExecResult, error) {
	id := m.ContainerID()
	if id == "" {
		return nil, fmt.Errorf("no container")
	}

	exec, err := m.docker.ContainerExecCreate(ctx, id, container.ExecOptions{
		Cmd:          cmd,
		WorkingDir:   m.workDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create exec: %w", err)
	}

	attach, err := m.docker.ContainerExecAttach(ctx, exec.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("attach exec: %w", err)
	}
	defer attach.Close()

	var stdout, stderr strings.Builder
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read exec output: %w", err)
	}

	inspect, err := m.docker.ContainerExecInspect(ctx, exec.ID)
	if err != nil {
		return nil, fmt.Errorf("inspect exec: %w", err)
	}
	m.logger.Debug("Command finished", "exit_code", inspect.ExitCode, "cmd", strings.Join(cmd, " "))
	return &ExecResult{
		ExitCode: inspect.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// ContainerID returns the managed container's ID, or "" before creation.
func (m *Manager) ContainerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.containerID
}

// Close releases the Docker client.
func (m *Manager) Close() error {
	return m.docker.Close()
}

// find looks up the named container, running or not.
func (m *Manager) find(ctx context.Context) (*types.Container, error) {
	list, err := m.docker.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", m.name)),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	for i := range list {
		for _, n := range list[i].Names {
			if strings.TrimPrefix(n, "/") == m.name {
				return &list[i], nil
			}
		}
	}
	return nil, nil
}

// pullImage fetches the configured image if it is not present locally.
func (m *Manager) pullImage(ctx context.Context) error {
	images, err := m.docker.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", m.image)),
	})
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	if len(images) > 0 {
		return nil
	}

	m.logger.Info("Pulling image", "image", m.image)
	reader, err := m.docker.ImagePull(ctx, m.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", m.image, err)
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("read image pull stream: %w", err)
	}
	return nil
}
