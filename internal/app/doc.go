// Package app provides the application composition layer.
//
// # Architecture Role
//
// The app package sits above the infrastructure packages (connections, mail,
// httpserver) and composes them into a running application. It carries no
// business behavior of its own: handlers live in httpapi, dependency
// lifecycle in internal/connections, and delivery in internal/mail.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── httpapi/            # HTTP handlers and routing
//	├── metrics/            # Prometheus registry and HTTP instrumentation
//	└── system/             # Service lifecycle (ordered start, reverse stop)
//
// # Responsibilities
//
// The app package is responsible for:
//
//   - Building the connection manager, mail sender, and HTTP server from
//     the decoded configuration
//   - Wrapping the handler in the tracing and instrumentation middleware
//   - Registering every component with the system manager so startup and
//     shutdown happen in a deterministic order
//
// # Dependency Direction
//
// The dependency flow is:
//
//	cmd/infrademo/
//	      │
//	      ▼
//	internal/app/ (composition)
//	      │
//	      ├──► internal/connections/ (dependency handles)
//	      ├──► internal/mail/        (SMTP delivery)
//	      ├──► internal/httpserver/  (listener lifecycle)
//	      └──► internal/middleware/  (tracing)
package app
