package pkgdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hbpm-labs/hbpm/internal/config"
	"github.com/hbpm-labs/hbpm/internal/logging"
	"github.com/hbpm-labs/hbpm/internal/prompt"
)

// ExternalFileName is the persisted external-sources file inside the data dir.
const ExternalFileName = "external-packages.json"

// ErrNotFound reports that a query matched nothing.
var ErrNotFound = errors.New("not found")

// ExternalSources manages the user-maintained package list persisted
// independently of the scraped snapshot.
type ExternalSources struct {
	dataDir string
	log     *logging.Logger
}

// NewExternalSources constructs an ExternalSources manager.
func NewExternalSources(rt config.Runtime, log *logging.Logger) *ExternalSources {
	return &ExternalSources{dataDir: rt.DataDir, log: log}
}

// Path returns the external-sources file path.
func (e *ExternalSources) Path() string {
	return filepath.Join(e.dataDir, ExternalFileName)
}

// Load returns the external packages, or nil when the file is absent or
// empty. A malformed file is reported via the returned error but treated
// as empty, so a broken file never blocks catalog loading.
func (e *ExternalSources) Load() ([]Package, error) {
	data, err := os.ReadFile(e.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading external sources: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	if err := validateExternalFile(data); err != nil {
		return nil, fmt.Errorf("external sources file %s is malformed, treating as empty: %w", e.Path(), err)
	}

	var parsed map[string][]Package
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing external sources: %w", err)
	}
	return parsed[ExternalCategory], nil
}

// Add appends a package to the persisted list, creating the file when it is
// absent or empty. The whole file is rewritten on every change.
func (e *ExternalSources) Add(pkg Package) error {
	if err := os.MkdirAll(e.dataDir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorageUnavailable, e.dataDir, err)
	}

	existing, err := e.Load()
	if err != nil {
		e.log.Warnw("loading external sources before add", "error", err)
	}

	existing = append(existing, pkg)
	if err := e.write(existing); err != nil {
		return err
	}

	e.log.Infow("added external source", "title", pkg.Title, "repository", pkg.Repository)
	return nil
}

// Remove deletes external sources whose titles exactly match the requested
// titles, confirming each one. It fails when the file is missing or empty,
// and returns ErrNotFound when nothing matched the query. The surviving
// entries are rewritten as a whole file; an empty survivor list still
// leaves a valid file behind. An interrupt during confirmation aborts the
// whole removal without touching the file.
func (e *ExternalSources) Remove(titles []string, confirm prompt.Confirmer) error {
	info, err := os.Stat(e.Path())
	if err != nil {
		return fmt.Errorf("external sources file %s does not exist", e.Path())
	}
	if info.Size() == 0 {
		return fmt.Errorf("external sources file %s is empty", e.Path())
	}

	packages, err := e.Load()
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		return fmt.Errorf("no external packages found in database")
	}

	marked := make(map[int]bool)
	considered := 0

	for _, title := range titles {
		for i, pkg := range packages {
			if pkg.Title != title {
				continue
			}
			considered++
			yes, err := confirm.Confirm(fmt.Sprintf("Remove %s (%s) from the local database?", pkg.Title, pkg.Repository))
			if err != nil {
				if errors.Is(err, prompt.ErrInterrupted) {
					e.log.Infow("external source removal interrupted", "title", pkg.Title)
					return nil
				}
				return err
			}
			if yes {
				marked[i] = true
			}
		}
	}

	if considered == 0 {
		return fmt.Errorf("%w: no external sources found matching query", ErrNotFound)
	}

	var survivors []Package
	for i, pkg := range packages {
		if !marked[i] {
			survivors = append(survivors, pkg)
		}
	}

	if err := e.write(survivors); err != nil {
		return err
	}

	for i := range marked {
		e.log.Infow("removed external source", "title", packages[i].Title)
	}
	return nil
}

func (e *ExternalSources) write(packages []Package) error {
	if packages == nil {
		packages = []Package{}
	}

	data, err := json.MarshalIndent(map[string][]Package{ExternalCategory: packages}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling external sources: %w", err)
	}
	if err := os.WriteFile(e.Path(), data, 0644); err != nil {
		return fmt.Errorf("%w: writing external sources: %v", ErrStorageUnavailable, err)
	}
	return nil
}
