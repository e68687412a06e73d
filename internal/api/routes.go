package api

func (s *APIServer) setupRoutes() {
	authMiddleware := s.bearerTokenAuthMiddleware
	logMiddleware := s.loggingMiddleware

	s.router.Handle("GET /health", s.handleHealth())

	// Push events
	s.router.Handle("POST /v1/events/push", logMiddleware(authMiddleware(s.handlePushEvent())))

	// Deployment history
	s.router.Handle("GET /v1/deployments", authMiddleware(s.handleDeploymentsList()))
	s.router.Handle("GET /v1/deployments/{deploymentID}", authMiddleware(s.handleDeploymentGet()))

	// Secrets routes
	s.router.Handle("GET /v1/secrets", authMiddleware(s.handleSecretsList()))
	s.router.Handle("POST /v1/secrets", authMiddleware(s.handleSetSecret()))
	s.router.Handle("DELETE /v1/secrets/{name}", authMiddleware(s.handleDeleteSecret()))
}
