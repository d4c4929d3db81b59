// Package app wires campkit together: configuration, logging and
// telemetry, the backend client, exporters, the websocket hub with its
// per-client search sessions, and the chi router serving the API.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config file and environment
//	2. Initialize logging and OpenTelemetry
//	3. Create the websocket hub, notification center and backend client
//	4. Build the services and handlers
//	5. Set up middleware and routes
//
// # Usage
//
//	a, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return a.Run(ctx)
//
// Run serves HTTP and the websocket hub until ctx is cancelled, then shuts
// the server down within the configured grace period. Errors are returned
// to the caller; the package never exits the process.
package app
