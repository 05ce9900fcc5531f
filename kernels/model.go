package kernels

import (
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/lovi-cloud/tanuki/types"
)

// Artifact is the record of one extracted kernel/initrd pair.
type Artifact struct {
	ID             int          `db:"id"`
	ISOName        string       `db:"iso_name"`
	BaseName       string       `db:"base_name"`
	Flavor         types.Flavor `db:"flavor"`
	SourceSize     int64        `db:"source_size"`
	SourceModified time.Time    `db:"source_modified"`
	KernelSHA256   string       `db:"kernel_sha256"`
	InitrdSHA256   string       `db:"initrd_sha256"`
	ExtractedAt    time.Time    `db:"extracted_at"`
	RunID          uuid.UUID    `db:"run_id"`
}

// Unchanged reports whether the recorded source still matches the ISO on
// disk, in which case extraction can be skipped.
func (a *Artifact) Unchanged(size int64, modified time.Time) bool {
	return a.SourceSize == size && a.SourceModified.Equal(modified)
}
