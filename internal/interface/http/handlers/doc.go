// Package handlers contains reusable HTTP building blocks for the API server.
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1")
//	checker.AddCheck("postgres", handlers.NewPingCheck(db))
//	checker.AddCheck("redis", handlers.NewPingCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("health check failed: %s", status.Message)
//	}
//
// # Middleware
//
// APIKeyAuth verifies keys against bcrypt hashes, so only hashes live in
// configuration. Middleware compose with Chain; the first one listed runs
// first:
//
//	h := handlers.ChainHandler(mux,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.RequestSizeLimitMiddleware(64<<10),
//	)
package handlers
