package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photogallery/server/internal/models"
)

type recordingMover struct {
	calls []models.PhotoMoveOperation
	err   error
}

func (m *recordingMover) MovePhotoBetweenAlbums(_ context.Context, op models.PhotoMoveOperation) error {
	m.calls = append(m.calls, op)
	return m.err
}

func photoPayload() Payload {
	return Payload{Type: PayloadTypePhoto, ID: "p1", SourceAlbumID: "src"}
}

func TestController_BeginTransfer(t *testing.T) {
	t.Run("accepts a photo payload", func(t *testing.T) {
		c := NewController(&recordingMover{})
		require.NoError(t, c.BeginTransfer(photoPayload()))
		require.NotNil(t, c.Active())
		assert.Equal(t, "p1", c.Active().ID)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		c := NewController(&recordingMover{})
		assert.ErrorIs(t, c.BeginTransfer(Payload{Type: "album", ID: "x", SourceAlbumID: "s"}), ErrInvalidPayload)
		assert.ErrorIs(t, c.BeginTransfer(Payload{Type: PayloadTypePhoto, SourceAlbumID: "s"}), ErrInvalidPayload)
		assert.ErrorIs(t, c.BeginTransfer(Payload{Type: PayloadTypePhoto, ID: "x"}), ErrInvalidPayload)
	})

	t.Run("refuses a second gesture", func(t *testing.T) {
		c := NewController(&recordingMover{})
		require.NoError(t, c.BeginTransfer(photoPayload()))
		assert.ErrorIs(t, c.BeginTransfer(photoPayload()), ErrTransferInProgress)
	})
}

func TestController_TargetTracking(t *testing.T) {
	c := NewController(&recordingMover{})

	t.Run("update without a gesture fails", func(t *testing.T) {
		assert.ErrorIs(t, c.UpdateTarget("dst"), ErrNoActiveTransfer)
	})

	require.NoError(t, c.BeginTransfer(photoPayload()))
	require.NoError(t, c.UpdateTarget("dst"))
	assert.Equal(t, "dst", c.Target())

	t.Run("stale leave is ignored", func(t *testing.T) {
		c.LeaveTarget("somewhere-else")
		assert.Equal(t, "dst", c.Target())
	})

	t.Run("matching leave clears the target", func(t *testing.T) {
		c.LeaveTarget("dst")
		assert.Empty(t, c.Target())
	})
}

func TestController_CommitTransfer(t *testing.T) {
	t.Run("moves onto a different album", func(t *testing.T) {
		mover := &recordingMover{}
		c := NewController(mover)
		require.NoError(t, c.BeginTransfer(photoPayload()))

		res := c.CommitTransfer(context.Background(), "dst")
		assert.True(t, res.Success)
		assert.NoError(t, res.Err)
		require.Len(t, mover.calls, 1)
		assert.Equal(t, models.PhotoMoveOperation{PhotoID: "p1", FromAlbumID: "src", ToAlbumID: "dst"}, mover.calls[0])
		assert.Nil(t, c.Active())
	})

	t.Run("self-drop does nothing", func(t *testing.T) {
		mover := &recordingMover{}
		c := NewController(mover)
		require.NoError(t, c.BeginTransfer(photoPayload()))

		res := c.CommitTransfer(context.Background(), "src")
		assert.False(t, res.Success)
		assert.NoError(t, res.Err)
		assert.Empty(t, mover.calls)
		assert.Nil(t, c.Active())
	})

	t.Run("empty target does nothing", func(t *testing.T) {
		mover := &recordingMover{}
		c := NewController(mover)
		require.NoError(t, c.BeginTransfer(photoPayload()))

		res := c.CommitTransfer(context.Background(), "")
		assert.False(t, res.Success)
		assert.Empty(t, mover.calls)
	})

	t.Run("mover failure still ends the gesture", func(t *testing.T) {
		mover := &recordingMover{err: assert.AnError}
		c := NewController(mover)
		require.NoError(t, c.BeginTransfer(photoPayload()))

		res := c.CommitTransfer(context.Background(), "dst")
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, assert.AnError)
		assert.Nil(t, c.Active())

		// Controller is immediately reusable.
		assert.NoError(t, c.BeginTransfer(photoPayload()))
	})

	t.Run("commit without a gesture fails", func(t *testing.T) {
		c := NewController(&recordingMover{})
		res := c.CommitTransfer(context.Background(), "dst")
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, ErrNoActiveTransfer)
	})
}

func TestController_CancelTransfer(t *testing.T) {
	mover := &recordingMover{}
	c := NewController(mover)
	require.NoError(t, c.BeginTransfer(photoPayload()))
	require.NoError(t, c.UpdateTarget("dst"))

	c.CancelTransfer()

	assert.Nil(t, c.Active())
	assert.Empty(t, c.Target())
	assert.Empty(t, mover.calls)
	assert.NoError(t, c.BeginTransfer(photoPayload()))
}
