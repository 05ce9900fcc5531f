package datastore

import (
	"context"

	"github.com/lovi-cloud/tanuki/kernels"
)

// Datastore is an interface for tanuki to record extraction results. The
// inventory lets repeated runs skip ISOs whose source file has not changed.
type Datastore interface {
	// GetArtifact returns the record for isoName, or (nil, nil) when no
	// record exists yet.
	GetArtifact(ctx context.Context, isoName string) (*kernels.Artifact, error)
	PutArtifact(ctx context.Context, artifact kernels.Artifact) error

	Close() error
}
