package market

import (
	"fmt"
	"os"

	"github.com/xyproto/unzip"
)

// LoadUniverseZip extracts a zipped dataset bundle (per-symbol CSV files,
// optionally xz-compressed) into a temporary directory and loads it with
// LoadUniverseDir. The extracted files are removed when loading finishes;
// all bars live in memory for the rest of the run.
func LoadUniverseZip(path string) (*Universe, error) {
	tmp, err := os.MkdirTemp("", "stockbot-bars-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	if err := unzip.Extract(path, tmp); err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return LoadUniverseDir(tmp)
}
