package services

import "errors"

// Analytics service errors
var (
	// Dataset errors
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	ErrNoOrdersFound    = errors.New("no orders found")

	// Scenario errors
	ErrInvalidScenario = errors.New("invalid sustainability scenario")

	// Export errors
	ErrExportFailed = errors.New("report export failed")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
