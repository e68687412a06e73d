// Package deploy runs the two-stage pipeline: build and publish the agent
// image for a branch, then replace the running container on the target host
// with the freshly published build.
package deploy

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/client"
	"github.com/oklog/ulid"
	"github.com/predixlabs/predix-deploy/internal/config"
	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/predixlabs/predix-deploy/internal/dockerx"
	"github.com/predixlabs/predix-deploy/internal/envfile"
	"github.com/predixlabs/predix-deploy/internal/gitref"
	"github.com/predixlabs/predix-deploy/internal/helpers"
	"github.com/predixlabs/predix-deploy/internal/lintcfg"
	"github.com/predixlabs/predix-deploy/internal/logging"
	"github.com/predixlabs/predix-deploy/internal/store"
)

const (
	buildTimeout  = 30 * time.Minute
	deployTimeout = 10 * time.Minute
	startTimeout  = 30 * time.Second
)

// NewDeploymentID returns a new ULID. IDs are time-ordered, so sorting
// deployments by ID sorts them by start time.
func NewDeploymentID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

type Pipeline struct {
	cfg    config.Config
	docker *client.Client
	store  *store.Store
	logger *slog.Logger
	out    io.Writer
}

func NewPipeline(cfg config.Config, dockerClient *client.Client, st *store.Store, logger *slog.Logger, out io.Writer) *Pipeline {
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		cfg:    cfg,
		docker: dockerClient,
		store:  st,
		logger: logger,
		out:    out,
	}
}

// Resolve maps a branch to its release using the configured branch rules.
func (p *Pipeline) Resolve(branch string) (gitref.Release, error) {
	return gitref.Resolve(branch, p.cfg.Branches)
}

// Build builds the image for the release's tag and pushes it to the
// registry. When a lint config is declared it is validated first, so a
// broken lint setup fails the pipeline before any image work starts.
func (p *Pipeline) Build(ctx context.Context, release gitref.Release) error {
	if p.cfg.Lint != nil && p.cfg.Lint.Config != "" {
		if _, err := lintcfg.Load(p.cfg.Lint.Config); err != nil {
			return fmt.Errorf("lint config check failed: %w", err)
		}
	}
	if p.cfg.Image.Builder == nil {
		return fmt.Errorf("image '%s' has no builder configured", p.cfg.Image.Repository)
	}

	imageRef := p.cfg.Image.Ref(release.Tag)
	buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	p.logger.Info("Building image", "image", imageRef, "branch", release.Branch)
	buildOut := helpers.NewPrefixWriter(p.out, "[build] ")
	if err := dockerx.BuildImage(buildCtx, p.docker, buildOut, imageRef, p.cfg.Image.Builder); err != nil {
		return err
	}

	authStr, err := p.cfg.Image.AuthString(p.secretLookup())
	if err != nil {
		return fmt.Errorf("failed to resolve registry credentials: %w", err)
	}
	p.logger.Info("Pushing image", "image", imageRef)
	return dockerx.PushImage(buildCtx, p.docker, helpers.NewPrefixWriter(p.out, "[push] "), imageRef, authStr)
}

// Deploy replaces the running container with the release's image. The env
// file is materialized from the release's secret before anything touches
// the container, so a missing secret aborts the deployment with the old
// container still running. Removal of the previous container and image is
// best-effort: on a clean host there is nothing to remove.
func (p *Pipeline) Deploy(ctx context.Context, deploymentID string, release gitref.Release) error {
	logger := logging.ForDeployment(p.logger, deploymentID, release.Branch)
	deployCtx, cancel := context.WithTimeout(ctx, deployTimeout)
	defer cancel()

	envContent, err := p.store.GetSecretValue(release.EnvSecret)
	if err != nil {
		return fmt.Errorf("failed to read env secret '%s': %w", release.EnvSecret, err)
	}
	envPath, err := p.cfg.EnvFilePath()
	if err != nil {
		return err
	}
	if err := envfile.Write(envPath, envContent); err != nil {
		return err
	}
	envVars, err := envfile.Read(envPath)
	if err != nil {
		return fmt.Errorf("failed to parse env file '%s': %w", envPath, err)
	}
	logger.Info("Wrote env file", "path", envPath, "vars", len(envVars))

	// Cleanup must happen before the pull: the tag is mutable, so once the
	// pull retargets it, removing the tag would delete the build the new
	// container is about to run.
	imageRef := p.cfg.Image.Ref(release.Tag)
	dockerx.StopAndRemoveContainer(deployCtx, p.docker, logger, p.cfg.Name)
	dockerx.RemoveImage(deployCtx, p.docker, logger, imageRef)

	authStr, err := p.cfg.Image.AuthString(p.secretLookup())
	if err != nil {
		return fmt.Errorf("failed to resolve registry credentials: %w", err)
	}
	if err := dockerx.PullImage(deployCtx, p.docker, helpers.NewPrefixWriter(p.out, "[pull] "), imageRef, authStr); err != nil {
		return err
	}

	containerID, err := dockerx.RunContainer(deployCtx, p.docker, dockerx.RunContainerParams{
		Name:         p.cfg.Name,
		ImageRef:     imageRef,
		DeploymentID: deploymentID,
		Branch:       release.Branch,
		Env:          envfile.ToList(envVars),
		Ports:        p.cfg.Ports,
		Volumes:      p.cfg.Volumes,
	})
	if err != nil {
		return err
	}
	if err := dockerx.WaitForRunning(deployCtx, p.docker, containerID, startTimeout); err != nil {
		return err
	}
	logger.Info("Container running", "name", p.cfg.Name, "image", imageRef)
	return nil
}

// Run executes the full pipeline for a branch under a caller-provided
// deployment ID and records the outcome. A branch with no configured rule
// is recorded as skipped, not failed; the returned deployment's Status
// tells them apart.
func (p *Pipeline) Run(ctx context.Context, id, branch, trigger string) (store.Deployment, error) {
	d := store.Deployment{
		ID:        id,
		AppName:   p.cfg.Name,
		Branch:    branch,
		Trigger:   trigger,
		Status:    store.StatusStarted,
		StartedAt: time.Now(),
	}

	release, err := p.Resolve(branch)
	if errors.Is(err, gitref.ErrBranchNotConfigured) {
		d.Status = store.StatusSkipped
		d.Error = err.Error()
		if saveErr := p.record(d); saveErr != nil {
			return d, saveErr
		}
		p.logger.Info("Skipping branch with no deployment rule", "branch", branch)
		return d, nil
	}
	if err != nil {
		return d, err
	}

	d.Tag = release.Tag
	d.Runner = release.Runner
	d.ImageRef = p.cfg.Image.Ref(release.Tag)
	if err := p.record(d); err != nil {
		return d, err
	}

	if err := p.Build(ctx, release); err != nil {
		return p.finish(d, err)
	}
	if err := p.Deploy(ctx, d.ID, release); err != nil {
		return p.finish(d, err)
	}
	return p.finish(d, nil)
}

func (p *Pipeline) record(d store.Deployment) error {
	if p.store == nil {
		return nil
	}
	if err := p.store.SaveDeployment(d); err != nil {
		return fmt.Errorf("failed to record deployment %s: %w", d.ID, err)
	}
	return nil
}

func (p *Pipeline) finish(d store.Deployment, runErr error) (store.Deployment, error) {
	d.Status = store.StatusSucceeded
	errMsg := ""
	if runErr != nil {
		d.Status = store.StatusFailed
		errMsg = runErr.Error()
		d.Error = errMsg
	}
	if p.store != nil {
		if err := p.store.FinishDeployment(d.ID, d.Status, errMsg); err != nil {
			p.logger.Warn("Failed to record deployment outcome", "deployment", d.ID, "error", err)
		}
		if err := p.store.PruneDeployments(constants.DefaultDeploymentsToKeep); err != nil {
			p.logger.Warn("Failed to prune deployment history", "error", err)
		}
	}
	return d, runErr
}

func (p *Pipeline) secretLookup() config.SecretLookup {
	if p.store == nil {
		return nil
	}
	return p.store.GetSecretValue
}
