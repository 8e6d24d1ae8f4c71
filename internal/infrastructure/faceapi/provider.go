// Package faceapi defines the boundary to the face analysis sidecar that
// owns the camera and the neural models.
package faceapi

import (
	"context"

	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
)

// Provider is the face analysis boundary. Detect returns (nil, nil) when the
// camera frame contains no usable face; that outcome is transient, not an
// error, and the caller decides whether to retry.
type Provider interface {
	Detect(ctx context.Context) (*scan.Observation, error)
}
