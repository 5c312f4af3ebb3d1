package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
)

// NotFoundError is returned by Fetch when no document with the requested
// name exists. It carries the full set of known names so the caller can
// recover without a second round trip.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("workflow %q not found; no workflows have been recorded yet", e.Name)
	}
	return fmt.Sprintf("workflow %q not found; known workflows: %s", e.Name, strings.Join(e.Known, ", "))
}

// Summary is one row of a workflow listing.
type Summary struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
	StepCount   int    `json:"stepCount"   yaml:"stepCount"`
}

// degradedDescription flags a document that exists but failed to parse.
// Listing reports it instead of aborting, so one corrupt document never
// hides the rest.
const degradedDescription = "Error loading workflow"

// nameRe restricts workflow names to filename-safe characters.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._ -]*$`)

// Store persists workflow documents as one JSON file per name under a
// directory. Saves overwrite wholesale; documents are never mutated in
// place. Last writer wins for concurrent saves of the same name.
type Store struct {
	dir   string
	cache *docCache
	log   *zap.Logger
}

// New creates a Store rooted at dir. The directory is created lazily on the
// first save. cacheTTL bounds how long parsed documents are served from
// memory; 0 disables the cache.
func New(dir string, cacheTTL time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		dir:   dir,
		cache: newDocCache(cacheTTL),
		log:   log,
	}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save validates the workflow and writes it atomically under its name,
// overwriting any existing document. Returns the file path written.
// The write goes to a temp file in the same directory, is fsynced, then
// renamed over the destination so readers never observe a partial document.
func (s *Store) Save(wf *model.Workflow) (string, error) {
	if err := wf.Validate(); err != nil {
		return "", err
	}
	if !nameRe.MatchString(wf.Name) {
		return "", fmt.Errorf("workflow name %q contains characters unsafe for storage", wf.Name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create workflow directory: %w", err)
	}

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal workflow %q: %w", wf.Name, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "tmp-"+wf.Name+"-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("write workflow %q: %w", wf.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync workflow %q: %w", wf.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dest := s.path(wf.Name)
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("rename workflow %q into place: %w", wf.Name, err)
	}

	s.cache.invalidate(wf.Name)
	s.log.Info("workflow saved",
		zap.String("workflow", wf.Name),
		zap.Int("steps", len(wf.Steps)),
		zap.String("path", dest))
	return dest, nil
}

// Fetch loads the workflow with the given name. A missing document yields a
// *NotFoundError enumerating every currently known name.
func (s *Store) Fetch(name string) (*model.Workflow, error) {
	if wf, ok := s.cache.get(name); ok {
		return wf, nil
	}

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Name: name, Known: s.knownNames()}
	}
	if err != nil {
		return nil, fmt.Errorf("read workflow %q: %w", name, err)
	}

	var wf model.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow %q: %w", name, err)
	}

	s.cache.put(name, &wf)
	return &wf, nil
}

// List returns a summary for every document in the storage directory,
// sorted by name. A document that fails to parse is reported as a degraded
// entry rather than aborting the listing. A missing directory is an empty
// store, not an error; any other directory read failure is.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workflow directory %s: %w", s.dir, err)
	}

	var summaries []Summary
	for _, entry := range entries {
		name, ok := documentName(entry)
		if !ok {
			continue
		}
		var wf model.Workflow
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err == nil {
			err = json.Unmarshal(data, &wf)
		}
		if err != nil {
			s.log.Warn("skipping corrupt workflow document",
				zap.String("file", entry.Name()), zap.Error(err))
			summaries = append(summaries, Summary{
				Name:        name,
				Description: degradedDescription,
			})
			continue
		}
		summaries = append(summaries, Summary{
			Name:        name,
			Description: wf.Description,
			StepCount:   len(wf.Steps),
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// knownNames returns every document name currently in the store, best-effort.
func (s *Store) knownNames() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if name, ok := documentName(entry); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// documentName maps a directory entry to a workflow name, skipping
// non-documents and leftover temp files.
func documentName(entry os.DirEntry) (string, bool) {
	if entry.IsDir() {
		return "", false
	}
	n := entry.Name()
	if !strings.HasSuffix(n, ".json") || strings.HasPrefix(n, "tmp-") {
		return "", false
	}
	return strings.TrimSuffix(n, ".json"), true
}
