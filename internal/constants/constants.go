package constants

import "os"

const (
	Version = "0.1.0"

	DefaultAppName    = "predix-agent"
	DefaultRepository = "ghcr.io/predixlabs/predix-agent"

	// Branch names the delivery pipeline reacts to. Pushes to any other
	// branch are acknowledged and skipped.
	DefaultBranch = "master"
	DevelopBranch = "develop"

	DefaultTag  = "latest"
	DevelopTag  = "develop"
	ProdRunner  = "prod"
	DevRunner   = "dev"
	ProdEnvName = "ENV_PRD"
	DevEnvName  = "ENV_DEV"

	DefaultPortMapping = "5021:80"
	DefaultVolume      = "/home/ec2-user/predix-agent/logs:/code/logs"

	DefaultDeploymentsToKeep = 20
	DefaultListenAddr        = ":9410"
	DefaultAPIServerURL      = "http://localhost:9410"

	// Environment variables
	EnvVarAgeIdentity = "PREDIX_DEPLOY_ENCRYPTION_KEY"
	EnvVarAPIToken    = "PREDIX_DEPLOY_API_TOKEN"
	EnvVarDataDir     = "PREDIX_DEPLOY_DATA_DIR"
	EnvVarConfigDir   = "PREDIX_DEPLOY_CONFIG_DIR"
	EnvVarDebug       = "PREDIX_DEPLOY_DEBUG"

	// File names
	ConfigFileBase    = "predix-deploy"
	ConfigEnvFileName = ".env"
)

// File and directory permissions
const (
	ModeFileSecret  os.FileMode = 0o600 // secrets: .env, keys
	ModeFileDefault os.FileMode = 0o644 // non-secret configs
	ModeDirPrivate  os.FileMode = 0o700 // private dirs
)
