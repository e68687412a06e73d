package dockerx

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// PushImage pushes imageRef to its registry. authStr is the encoded
// X-Registry-Auth payload from config.Image.AuthString.
func PushImage(ctx context.Context, dockerClient *client.Client, out io.Writer, imageRef, authStr string) error {
	resp, err := dockerClient.ImagePush(ctx, imageRef, image.PushOptions{
		RegistryAuth: authStr,
	})
	if err != nil {
		return fmt.Errorf("failed to push image '%s': %w", imageRef, err)
	}
	defer resp.Close()

	return displayStream(resp, out, "push")
}

// PullImage pulls imageRef so the deploy stage always runs the freshly
// published build, not a stale local copy of a mutable tag.
func PullImage(ctx context.Context, dockerClient *client.Client, out io.Writer, imageRef, authStr string) error {
	resp, err := dockerClient.ImagePull(ctx, imageRef, image.PullOptions{
		RegistryAuth: authStr,
	})
	if err != nil {
		return fmt.Errorf("failed to pull image '%s': %w", imageRef, err)
	}
	defer resp.Close()

	return displayStream(resp, out, "pull")
}

// RemoveImage removes the previous image by reference. Best-effort: a
// missing image (first deployment on a clean host) or an image still in use
// is logged and ignored.
func RemoveImage(ctx context.Context, dockerClient *client.Client, logger *slog.Logger, imageRef string) {
	_, err := dockerClient.ImageRemove(ctx, imageRef, image.RemoveOptions{
		PruneChildren: true,
	})
	if err != nil {
		if client.IsErrNotFound(err) {
			logger.Debug("No previous image to remove", "image", imageRef)
			return
		}
		logger.Warn("Failed to remove previous image", "image", imageRef, "error", err)
		return
	}
	logger.Info("Removed previous image", "image", imageRef)
}
