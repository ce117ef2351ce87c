// Package upload coordinates the file-upload workflow: one small state
// machine per registered file type plus the aggregate server-side status.
package upload

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amlwatch/dashboard/internal/domain"
)

// SlotState is the lifecycle state of one upload slot.
type SlotState string

const (
	SlotIdle      SlotState = "idle"
	SlotUploading SlotState = "uploading"
	SlotSuccess   SlotState = "success"
	SlotError     SlotState = "error"
)

// Backend is the slice of the analysis backend the coordinator needs.
type Backend interface {
	Upload(ctx context.Context, slug, filename string, content []byte) (*domain.UploadResult, error)
	Status(ctx context.Context) (domain.UploadStatusMap, error)
	Clear(ctx context.Context) error
}

// Slot is the render view of one upload state machine.
type Slot struct {
	FileType    domain.FileType `json:"file_type"`
	State       SlotState       `json:"state"`
	Filename    string          `json:"filename,omitempty"`
	RecordCount int             `json:"record_count"`
	Warnings    []string        `json:"warnings,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Snapshot is the full render view of the upload workflow.
type Snapshot struct {
	Slots  []Slot                 `json:"slots"`
	Status domain.UploadStatusMap `json:"status"`
	Busy   bool                   `json:"busy"`
	Err    string                 `json:"error,omitempty"`
}

// Coordinator owns the per-slot transient state and the separately polled
// aggregate status. The two are logically independent; a successful upload
// flips its status key locally without waiting for a fresh poll.
type Coordinator struct {
	backend Backend
	log     zerolog.Logger

	mu       sync.Mutex
	slots    map[string]*Slot
	status   domain.UploadStatusMap
	clearing bool
	err      string
}

// NewCoordinator creates a coordinator with every registered file type idle
// and every status flag false.
func NewCoordinator(b Backend, log zerolog.Logger) *Coordinator {
	slots := make(map[string]*Slot)
	for _, ft := range domain.FileTypes() {
		slots[ft.Slug] = &Slot{FileType: ft, State: SlotIdle}
	}
	return &Coordinator{
		backend: b,
		log:     log,
		slots:   slots,
		status:  domain.EmptyUploadStatus(),
	}
}

// HandleFile is the single entry point for both drag-drop and the file
// picker; callers pass only the first file of a multi-file drop. The slot
// moves to uploading for the round-trip, then to success with the record
// count or to error with the backend's message.
func (c *Coordinator) HandleFile(ctx context.Context, slug, filename string, content []byte) error {
	c.mu.Lock()
	slot, ok := c.slots[slug]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown file type %q", slug)
	}
	if slot.State == SlotUploading {
		c.mu.Unlock()
		return fmt.Errorf("upload already in progress for %q", slug)
	}
	slot.State = SlotUploading
	slot.Filename = filename
	slot.RecordCount = 0
	slot.Warnings = nil
	slot.Error = ""
	statusKey := slot.FileType.StatusKey
	c.mu.Unlock()

	attempt := uuid.New().String()
	c.log.Info().
		Str("attempt_id", attempt).
		Str("file_type", slug).
		Str("filename", filename).
		Int("bytes", len(content)).
		Msg("upload started")

	result, err := c.backend.Upload(ctx, slug, filename, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		slot.State = SlotError
		slot.Error = err.Error()
		c.log.Warn().Str("attempt_id", attempt).Err(err).Msg("upload failed")
		return err
	}
	slot.State = SlotSuccess
	slot.RecordCount = result.RecordCount
	slot.Warnings = result.Warnings
	// Optimistic flip: the dataset is now present server-side, no re-poll.
	c.status[statusKey] = true
	c.log.Info().
		Str("attempt_id", attempt).
		Int("record_count", result.RecordCount).
		Msg("upload complete")
	return nil
}

// Reset returns a finished slot to idle, clearing filename, record count
// and error. An uploading slot is left alone.
func (c *Coordinator) Reset(slug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[slug]
	if !ok {
		return fmt.Errorf("unknown file type %q", slug)
	}
	if slot.State == SlotUploading {
		return fmt.Errorf("upload in progress for %q", slug)
	}
	*slot = Slot{FileType: slot.FileType, State: SlotIdle}
	return nil
}

// RefreshStatus polls the aggregate status. Failures are ignored: the
// status endpoint may simply not be populated yet.
func (c *Coordinator) RefreshStatus(ctx context.Context) {
	status, err := c.backend.Status(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("upload status poll failed")
		return
	}
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// ClearAll drops all server-side data, then resets every slot to idle and
// every status flag to false. Refused while an upload is in flight; the
// Busy snapshot field drives the disabled control.
func (c *Coordinator) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	if c.busyLocked() {
		c.mu.Unlock()
		return fmt.Errorf("clear refused: upload in progress")
	}
	c.clearing = true
	c.err = ""
	c.mu.Unlock()

	err := c.backend.Clear(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearing = false
	if err != nil {
		c.err = err.Error()
		return err
	}
	for _, slot := range c.slots {
		*slot = Slot{FileType: slot.FileType, State: SlotIdle}
	}
	c.status = domain.EmptyUploadStatus()
	c.log.Info().Msg("all uploaded data cleared")
	return nil
}

// Busy reports whether any slot is mid-upload or a clear is in flight.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busyLocked()
}

func (c *Coordinator) busyLocked() bool {
	if c.clearing {
		return true
	}
	for _, slot := range c.slots {
		if slot.State == SlotUploading {
			return true
		}
	}
	return false
}

// Snapshot returns the render view, slots in registry order.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots := make([]Slot, 0, len(c.slots))
	for _, ft := range domain.FileTypes() {
		slots = append(slots, *c.slots[ft.Slug])
	}
	return Snapshot{
		Slots:  slots,
		Status: c.status.Clone(),
		Busy:   c.busyLocked(),
		Err:    c.err,
	}
}
