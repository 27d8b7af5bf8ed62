package manifest

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/shorts2video/internal/system"
)

// GeneratePath creates a timestamped manifest filename in dir
func GeneratePath(dir, runID string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return filepath.Join(dir, fmt.Sprintf("manifest_%s_%s.yaml", timestamp, runID))
}

// FindLatest finds the most recent manifest file in dir
func FindLatest(dir string) (string, error) {
	return system.FindLatest(dir, ".yaml", ".yml")
}
