package install

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RecordFile is the bookkeeping record written into the project root after
// an installation.
const RecordFile = ".grule.json"

// Record captures what was installed and the project attributes that drove
// the recommendation.
type Record struct {
	InstalledAt time.Time           `json:"installedAt"`
	Target      Target              `json:"target"`
	Attributes  map[string][]string `json:"attributes"`
	Rules       []string            `json:"rules"`
}

// WriteRecord writes the installation record into the project directory.
func (i *Installer) WriteRecord(rec Record) error {
	if rec.InstalledAt.IsZero() {
		rec.InstalledAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	path := filepath.Join(i.projectDir, RecordFile)

	err = os.WriteFile(path, append(data, '\n'), 0o644)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	return nil
}

// ReadRecord loads a previously written installation record from the project
// directory, returning nil without error if none exists.
func ReadRecord(projectDir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, RecordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read record: %w", err)
	}

	rec := &Record{}

	err = json.Unmarshal(data, rec)
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	return rec, nil
}
