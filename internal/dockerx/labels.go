package dockerx

const (
	LabelApp          = "predix-deploy.app"
	LabelDeploymentID = "predix-deploy.deployment-id"
	LabelBranch       = "predix-deploy.branch"
)

// ContainerLabels identify containers managed by this tool and record which
// deployment and branch produced them.
func ContainerLabels(appName, deploymentID, branch string) map[string]string {
	return map[string]string{
		LabelApp:          appName,
		LabelDeploymentID: deploymentID,
		LabelBranch:       branch,
	}
}
