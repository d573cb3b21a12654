// Package app wires the analytics service together: configuration, logger,
// engine, services, HTTP router and server lifecycle.
package app
