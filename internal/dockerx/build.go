package dockerx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/term"
	"github.com/predixlabs/predix-deploy/internal/config"
)

// BuildImage builds the agent image mimicking 'docker build' behavior:
// the build context is archived (honoring .dockerignore) and streamed to
// the daemon, and the daemon's output is streamed to out.
func BuildImage(ctx context.Context, dockerClient *client.Client, out io.Writer, imageRef string, builder *config.Builder) error {
	buildOpts := types.ImageBuildOptions{
		Tags:       []string{imageRef},
		Dockerfile: filepath.Base(builder.Dockerfile),
		BuildArgs:  make(map[string]*string),
		Remove:     true, // remove intermediate containers after a successful build
	}
	for k, v := range builder.Args {
		value := v // new variable for pointer capture
		buildOpts.BuildArgs[k] = &value
	}

	buildContext := builder.Context
	if buildContext == "" {
		buildContext = "."
	}
	absContext, err := filepath.Abs(buildContext)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path for build context '%s': %w", buildContext, err)
	}
	absDockerfile, err := filepath.Abs(builder.Dockerfile)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path for Dockerfile '%s': %w", builder.Dockerfile, err)
	}
	if !strings.HasPrefix(absDockerfile, absContext+string(filepath.Separator)) && absDockerfile != absContext {
		return fmt.Errorf("Dockerfile '%s' must be inside the build context '%s'", absDockerfile, absContext)
	}

	buildContextTar, err := archive.TarWithOptions(absContext, &archive.TarOptions{
		ExcludePatterns: dockerIgnorePatterns(absContext),
	})
	if err != nil {
		return fmt.Errorf("failed to create build context archive from '%s': %w", absContext, err)
	}
	defer buildContextTar.Close()

	resp, err := dockerClient.ImageBuild(ctx, buildContextTar, buildOpts)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("image build cancelled: %w", ctx.Err())
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("image build timed out: %w", ctx.Err())
		}
		return fmt.Errorf("failed to initiate image build for '%s': %w", imageRef, err)
	}
	defer resp.Body.Close()

	return displayStream(resp.Body, out, "build")
}

// displayStream renders a docker jsonmessage stream the way the docker CLI
// does, surfacing daemon-side errors.
func displayStream(body io.Reader, out io.Writer, operation string) error {
	termFd, isTerm := term.GetFdInfo(out)
	err := jsonmessage.DisplayJSONMessagesStream(body, out, termFd, isTerm, nil)
	if err != nil {
		var jsonErr *jsonmessage.JSONError
		if errors.As(err, &jsonErr) {
			return fmt.Errorf("%s failed with error from Docker daemon: %s", operation, jsonErr.Message)
		}
		return fmt.Errorf("failed to stream %s output: %w", operation, err)
	}
	return nil
}

// dockerIgnorePatterns reads .dockerignore in the context directory.
// Returns an empty slice if the file doesn't exist.
func dockerIgnorePatterns(contextDir string) []string {
	patterns := []string{}
	data, err := os.ReadFile(filepath.Join(contextDir, ".dockerignore"))
	if err != nil {
		return patterns
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns
}
