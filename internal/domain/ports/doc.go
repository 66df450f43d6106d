// Package ports defines the interfaces (ports) that external adapters must implement.
// Services depend on these instead of concrete storage so tests can swap them.
package ports
