package recorder

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/snapshot"
)

var (
	// ErrAlreadyRecording is returned by Start when a session is active.
	ErrAlreadyRecording = errors.New("a recording session is already active; stop it before starting a new one")
	// ErrNotRecording is returned by Stop when no session is active.
	ErrNotRecording = errors.New("no recording session is active")
	// ErrEmptyRecording is returned by Stop when the active session has no steps.
	ErrEmptyRecording = errors.New("recording has no steps; record at least one action before stopping")
)

// session holds the state of one in-progress recording. It exists only while
// the recorder is active; the idle state carries no steps to corrupt.
type session struct {
	name        string
	description string
	steps       []model.Step
	index       *snapshot.Index
	checkpoint  bool // a snapshot-checkpoint step has been recorded
}

// Recorder converts a stream of low-level browser actions into workflow
// steps. At most one session is active at a time; the mutex makes the
// idle/active transition atomic with respect to concurrent calls, which is
// the one place mutual exclusion matters in this system.
type Recorder struct {
	mu   sync.Mutex
	sess *session
	// latest is the index of the most recent snapshot seen, kept across
	// sessions so a recording started mid-page can resolve references
	// against the snapshot that preceded it.
	latest *snapshot.Index
	log    *zap.Logger
}

// New returns an idle Recorder. A nil logger is replaced with a no-op.
func New(log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{log: log}
}

// Start transitions the recorder from idle to active. The description may be
// empty; Stop defaults it from the name.
func (r *Recorder) Start(name, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess != nil {
		return ErrAlreadyRecording
	}
	if name == "" {
		return fmt.Errorf("workflow name is required")
	}
	r.sess = &session{name: name, description: description, index: r.latest}
	r.log.Info("recording started", zap.String("workflow", name))
	return nil
}

// Recording reports whether a session is active and, if so, its name and
// the number of steps captured so far.
func (r *Recorder) Recording() (name string, steps int, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return "", 0, false
	}
	return r.sess.name, len(r.sess.steps), true
}

// RecordSnapshot replaces the current snapshot index with one built from
// the given snapshot text. Snapshots are bookkeeping, not replayable
// actions, so no step is appended — except for the very first snapshot
// taken during a session, which is recorded as a snapshot-checkpoint step
// so replay can re-establish a baseline. When idle the index is still
// retained for the next session to start from.
func (r *Recorder) RecordSnapshot(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	root, err := snapshot.Parse(text)
	if err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	r.latest = snapshot.BuildIndex(root)
	if r.sess == nil {
		return nil
	}
	r.sess.index = r.latest
	r.log.Debug("snapshot indexed",
		zap.String("workflow", r.sess.name),
		zap.Int("refs", r.sess.index.Len()))
	if !r.sess.checkpoint {
		r.sess.checkpoint = true
		r.append(model.Step{
			Tool:        model.ToolSnapshotCheckpoint,
			Description: "Capture a baseline page snapshot",
			Arguments:   map[string]any{},
		})
	}
	return nil
}

// RecordNavigate appends a navigate step. No-op when idle.
func (r *Recorder) RecordNavigate(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return nil
	}
	r.append(model.Step{
		Tool:        model.ToolNavigate,
		Description: fmt.Sprintf("Navigate to %s", url),
		Arguments:   map[string]any{"url": url},
	})
	return nil
}

// RecordClick resolves ref against the current snapshot and appends a click
// step. The element label is only used for the human-readable description;
// replay matches on the generalized target. No-op when idle.
func (r *Recorder) RecordClick(element, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return nil
	}
	desc, err := snapshot.Generalize(ref, r.sess.index)
	if err != nil {
		return err
	}
	r.append(model.Step{
		Tool:        model.ToolClick,
		Description: fmt.Sprintf("Click %s", labelOr(element, desc)),
		Target:      &desc,
		Arguments:   map[string]any{},
	})
	return nil
}

// RecordType resolves ref and appends a type step carrying the text and
// submit flag. No-op when idle.
func (r *Recorder) RecordType(element, ref, text string, submit bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return nil
	}
	desc, err := snapshot.Generalize(ref, r.sess.index)
	if err != nil {
		return err
	}
	description := fmt.Sprintf("Type %q into %s", text, labelOr(element, desc))
	if submit {
		description += " and submit"
	}
	r.append(model.Step{
		Tool:        model.ToolType,
		Description: description,
		Target:      &desc,
		Arguments:   map[string]any{"text": text, "submit": submit},
	})
	return nil
}

// RecordSelectOption resolves ref and appends a select_option step with the
// chosen values. No-op when idle.
func (r *Recorder) RecordSelectOption(element, ref string, values []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return nil
	}
	desc, err := snapshot.Generalize(ref, r.sess.index)
	if err != nil {
		return err
	}
	r.append(model.Step{
		Tool:        model.ToolSelectOption,
		Description: fmt.Sprintf("Select %s in %s", strings.Join(values, ", "), labelOr(element, desc)),
		Target:      &desc,
		Arguments:   map[string]any{"values": values},
	})
	return nil
}

// Stop drains the active session into a Workflow and transitions back to
// idle. Stopping with zero steps fails and leaves the session active, so the
// caller can still record and stop again.
func (r *Recorder) Stop() (*model.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return nil, ErrNotRecording
	}
	if len(r.sess.steps) == 0 {
		return nil, ErrEmptyRecording
	}
	description := r.sess.description
	if description == "" {
		description = fmt.Sprintf("Recorded workflow: %s", r.sess.name)
	}
	wf := &model.Workflow{
		Name:        r.sess.name,
		Description: description,
		Steps:       r.sess.steps,
	}
	r.sess = nil
	r.log.Info("recording stopped",
		zap.String("workflow", wf.Name),
		zap.Int("steps", len(wf.Steps)))
	return wf, nil
}

// Restore re-activates a session from a drained workflow so that a failed
// persistence attempt after Stop can be retried. Fails if a new session has
// already been started in the meantime.
func (r *Recorder) Restore(wf *model.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess != nil {
		return ErrAlreadyRecording
	}
	r.sess = &session{
		name:        wf.Name,
		description: wf.Description,
		steps:       wf.Steps,
		checkpoint:  true,
	}
	r.log.Warn("recording session restored after failed save", zap.String("workflow", wf.Name))
	return nil
}

// append assigns the next sequential step number. Caller holds the mutex.
func (r *Recorder) append(s model.Step) {
	s.Step = len(r.sess.steps) + 1
	r.sess.steps = append(r.sess.steps, s)
	r.log.Debug("step recorded",
		zap.String("workflow", r.sess.name),
		zap.Int("step", s.Step),
		zap.String("tool", s.Tool))
}

// labelOr prefers the caller-supplied element label for descriptions,
// falling back to the generalized descriptor.
func labelOr(element string, desc model.SelectorDescriptor) string {
	if element != "" {
		return element
	}
	return desc.String()
}
