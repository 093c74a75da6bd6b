package jobqueue

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

const (
	primarySourceKey   = "Source 1"
	secondarySourceKey = "Source 2"
)

// Discover validates a source set and returns a single queued job for it.
// Source 1 and Source 2 are required and must exist on disk; any further
// named sources are optional but must exist if provided.
func Discover(clock Clock, sources map[string]string) ([]Entry, error) {
	source1, ok := sources[primarySourceKey]
	if !ok || source1 == "" {
		return nil, vsgerrors.Newf("%s is required", primarySourceKey).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	source2, ok := sources[secondarySourceKey]
	if !ok || source2 == "" {
		return nil, vsgerrors.Newf("%s is required", secondarySourceKey).
			Kind(vsgerrors.InvalidPlan).Build()
	}

	for key, path := range sources {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return nil, vsgerrors.Newf("%s file not found: %s", key, path).
				Kind(vsgerrors.SourceNotFound).
				Context("source", key).
				Context("path", path).
				Build()
		}
	}

	job := Entry{
		ID:        uuid.NewString(),
		Name:      deriveJobName(source1),
		Sources:   copySources(sources),
		Status:    StatusPending,
		CreatedAt: clock.Now(),
	}

	return []Entry{job}, nil
}

func deriveJobName(source1Path string) string {
	base := filepath.Base(source1Path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		return "Unnamed Job"
	}
	return name
}

func copySources(sources map[string]string) map[string]string {
	cp := make(map[string]string, len(sources))
	for k, v := range sources {
		cp[k] = v
	}
	return cp
}
