package dockerx

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/predixlabs/predix-deploy/internal/config"
	"github.com/predixlabs/predix-deploy/internal/helpers"
)

const stopTimeoutSeconds = 20

// RunContainerParams describes the replacement container. The pipeline
// always runs exactly one container under a fixed name.
type RunContainerParams struct {
	Name         string
	ImageRef     string
	DeploymentID string
	Branch       string
	Env          []string
	Ports        []config.PortMapping
	Volumes      []string
}

// FindContainerByName returns the ID of the container with the exact name,
// or "" if none exists. Both running and stopped containers count: a
// stopped leftover still occupies the name.
func FindContainerByName(ctx context.Context, dockerClient *client.Client, name string) (string, error) {
	filterArgs := filters.NewArgs(filters.Arg("name", name))
	containerList, err := dockerClient.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}

	// The name filter matches substrings; require the exact name.
	for _, c := range containerList {
		if slices.Contains(c.Names, "/"+name) {
			return c.ID, nil
		}
	}
	return "", nil
}

// StopAndRemoveContainer stops and removes the previous container instance.
// Best-effort by design: on a clean host there is nothing to stop, and a
// failed stop must not abort the deployment, so every error is logged and
// swallowed.
func StopAndRemoveContainer(ctx context.Context, dockerClient *client.Client, logger *slog.Logger, name string) {
	id, err := FindContainerByName(ctx, dockerClient, name)
	if err != nil {
		logger.Warn("Failed to look up previous container", "name", name, "error", err)
		return
	}
	if id == "" {
		logger.Debug("No previous container to remove", "name", name)
		return
	}

	timeout := stopTimeoutSeconds
	if err := dockerClient.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		logger.Warn("Failed to stop previous container", "container", helpers.SafeIDPrefix(id), "error", err)
	}
	if err := dockerClient.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		logger.Warn("Failed to remove previous container", "container", helpers.SafeIDPrefix(id), "error", err)
		return
	}
	logger.Info("Removed previous container", "container", helpers.SafeIDPrefix(id), "name", name)
}

// RunContainer creates and starts the replacement container.
func RunContainer(ctx context.Context, dockerClient *client.Client, params RunContainerParams) (string, error) {
	exposedPorts := nat.PortSet{}
	portBindings := nat.PortMap{}
	for _, mapping := range params.Ports {
		port, err := nat.NewPort("tcp", mapping.ContainerPort)
		if err != nil {
			return "", fmt.Errorf("invalid container port '%s': %w", mapping.ContainerPort, err)
		}
		exposedPorts[port] = struct{}{}
		portBindings[port] = append(portBindings[port], nat.PortBinding{
			HostIP:   mapping.HostIP,
			HostPort: mapping.HostPort,
		})
	}

	containerConfig := &container.Config{
		Image:        params.ImageRef,
		Env:          params.Env,
		Labels:       ContainerLabels(params.Name, params.DeploymentID, params.Branch),
		ExposedPorts: exposedPorts,
	}
	hostConfig := &container.HostConfig{
		PortBindings:  portBindings,
		Binds:         params.Volumes,
		RestartPolicy: container.RestartPolicy{Name: "unless-stopped"},
	}

	resp, err := dockerClient.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, params.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := dockerClient.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// Remove the created container so the name is free for a retry.
		if removeErr := dockerClient.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true}); removeErr != nil {
			return "", fmt.Errorf("failed to start container: %w (cleanup also failed: %v)", err, removeErr)
		}
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	return resp.ID, nil
}

// WaitForRunning polls the container until it reports running or the
// timeout expires.
func WaitForRunning(ctx context.Context, dockerClient *client.Client, containerID string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		info, err := dockerClient.ContainerInspect(waitCtx, containerID)
		if err != nil {
			return fmt.Errorf("failed to inspect container %s: %w", helpers.SafeIDPrefix(containerID), err)
		}
		if info.State != nil && info.State.Running {
			return nil
		}
		if info.State != nil && info.State.Dead {
			return fmt.Errorf("container %s died during startup", helpers.SafeIDPrefix(containerID))
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("timed out waiting for container %s to start", helpers.SafeIDPrefix(containerID))
		case <-time.After(500 * time.Millisecond):
		}
	}
}
