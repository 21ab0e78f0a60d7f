// Package shutdown sequences graceful process termination.
//
// Components register named hooks as they start; Wait blocks for SIGINT,
// SIGTERM or a Trigger call and then runs the hooks newest first under a
// single deadline:
//
//	h := shutdown.NewHandler(30*time.Second, log)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait()
package shutdown
