package transfer

import (
	"context"
	"errors"
	"sync"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/observability"
)

// PayloadTypePhoto is the only payload kind the gallery transfers today.
const PayloadTypePhoto = "photo"

var (
	ErrNoActiveTransfer   = errors.New("no transfer in progress")
	ErrTransferInProgress = errors.New("a transfer is already in progress")
	ErrInvalidPayload     = errors.New("invalid transfer payload")
)

// Payload identifies what is being dragged and where it came from.
type Payload struct {
	Type          string
	ID            string
	SourceAlbumID string
}

func (p Payload) validate() error {
	if p.Type != PayloadTypePhoto || p.ID == "" || p.SourceAlbumID == "" {
		return ErrInvalidPayload
	}
	return nil
}

// DropResult reports what a commit did. A self-drop or a failed move yields
// Success false; Err is only set when something actually went wrong.
type DropResult struct {
	Success   bool
	Operation models.PhotoMoveOperation
	Err       error
}

// Mover performs the backing move when a transfer commits. AlbumStore
// satisfies it.
type Mover interface {
	MovePhotoBetweenAlbums(ctx context.Context, op models.PhotoMoveOperation) error
}

// Controller tracks one drag gesture at a time: the payload picked up, the
// album currently hovered, and the commit or cancel that ends it. It is
// input-agnostic, so the same protocol serves pointer drags and keyboard
// moves alike.
type Controller struct {
	mover  Mover
	logger *observability.Logger

	mu     sync.Mutex
	active *Payload
	target string
}

func NewController(mover Mover) *Controller {
	return &Controller{
		mover:  mover,
		logger: observability.GetLogger().WithField("component", "transfer"),
	}
}

// BeginTransfer starts a gesture. A second begin before the first ends is
// refused so a stray gesture cannot hijack an in-flight one.
func (c *Controller) BeginTransfer(payload Payload) error {
	if err := payload.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return ErrTransferInProgress
	}
	p := payload
	c.active = &p
	c.target = ""
	return nil
}

// UpdateTarget records the album the gesture is currently over.
func (c *Controller) UpdateTarget(albumID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ErrNoActiveTransfer
	}
	c.target = albumID
	return nil
}

// LeaveTarget clears the hover target, but only if the departing album is
// still the active target. Out-of-order leave events from a previous hover
// must not wipe the current one.
func (c *Controller) LeaveTarget(albumID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == albumID {
		c.target = ""
	}
}

// Target returns the currently hovered album, if any.
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Active returns the in-flight payload, or nil.
func (c *Controller) Active() *Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	p := *c.active
	return &p
}

// CommitTransfer drops the payload onto the target album. The gesture ends
// no matter how the drop goes: success, rejection, and failure all leave the
// controller ready for the next gesture.
func (c *Controller) CommitTransfer(ctx context.Context, targetAlbumID string) DropResult {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	defer c.reset()

	if active == nil {
		return DropResult{Err: ErrNoActiveTransfer}
	}
	if targetAlbumID == "" || targetAlbumID == active.SourceAlbumID {
		// Dropping a photo back where it came from is not a move.
		return DropResult{}
	}

	op := models.PhotoMoveOperation{
		PhotoID:     active.ID,
		FromAlbumID: active.SourceAlbumID,
		ToAlbumID:   targetAlbumID,
	}
	if err := c.mover.MovePhotoBetweenAlbums(ctx, op); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"photo_id": op.PhotoID,
			"to_album": op.ToAlbumID,
		}).Errorf("drop failed: %v", err)
		return DropResult{Operation: op, Err: err}
	}

	return DropResult{Success: true, Operation: op}
}

// CancelTransfer abandons the gesture without moving anything.
func (c *Controller) CancelTransfer() {
	c.reset()
}

func (c *Controller) reset() {
	c.mu.Lock()
	c.active = nil
	c.target = ""
	c.mu.Unlock()
}
