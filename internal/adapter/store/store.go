// Package store defines the data sources the correction use cases depend on.
package store

import "go.ngs.io/magsurvey/internal/domain"

// CoefficientLoader is the interface for loading a Gauss coefficient set.
type CoefficientLoader interface {
	// Coefficients returns the loaded set, reading it on first use.
	Coefficients() (*domain.CoefficientSet, error)
}
