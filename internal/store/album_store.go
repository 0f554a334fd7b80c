package store

import (
	"context"
	"errors"
	"sync"

	"github.com/photogallery/server/internal/models"
	"github.com/photogallery/server/internal/notify"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
)

// ErrOperationInFlight is returned when a mutation is requested while the
// same kind of mutation is still running.
var ErrOperationInFlight = errors.New("operation already in flight")

// ErrStoreClosed is returned by operations dispatched after Close.
var ErrStoreClosed = errors.New("album store is closed")

// AlbumState is the in-memory view of the album collection. It is only ever
// replaced wholesale by the reducer, never mutated in place.
type AlbumState struct {
	Albums       []*models.Album
	CurrentAlbum *models.AlbumWithPhotos
	IsLoading    bool
	IsCreating   bool
	IsUpdating   bool
	IsDeleting   bool
	Err          error
}

type actionKind int

const (
	actionLoadStarted actionKind = iota
	actionLoadFinished
	actionAlbumLoaded
	actionCreateStarted
	actionCreateFinished
	actionUpdateStarted
	actionUpdateFinished
	actionDeleteStarted
	actionDeleteFinished
	actionPhotoAdded
	actionPhotoRemoved
	actionPhotoMoved
	actionErrorSet
	actionErrorCleared
)

// action carries one state transition. Exactly one payload field is
// meaningful per kind.
type action struct {
	kind        actionKind
	albums      []*models.Album
	album       *models.Album
	withPhotos  *models.AlbumWithPhotos
	albumID     string
	photoID     string
	move        models.PhotoMoveOperation
	moveRemoved bool
	moveAdded   bool
	err         error
}

type dispatchReq struct {
	act   action
	gated bool
	reply chan dispatchRes
}

type dispatchRes struct {
	state AlbumState
	err   error
}

// AlbumStore owns AlbumState. All writes are serialized through a single
// goroutine fed by a channel, so the reducer never races and every dispatch
// observes a consistent state.
type AlbumStore struct {
	service  *services.AlbumService
	notifier notify.Notifier
	logger   *observability.Logger

	dispatchCh chan dispatchReq
	stateCh    chan chan AlbumState
	done       chan struct{}
	closeOnce  sync.Once
}

// NewAlbumStore creates the store and starts its reducer loop.
func NewAlbumStore(service *services.AlbumService, notifier notify.Notifier) *AlbumStore {
	s := &AlbumStore{
		service:    service,
		notifier:   notifier,
		logger:     observability.GetLogger().WithField("component", "album_store"),
		dispatchCh: make(chan dispatchReq),
		stateCh:    make(chan chan AlbumState),
		done:       make(chan struct{}),
	}
	go s.loop()
	return s
}

// Close stops the reducer loop. Operations dispatched afterwards fail with
// ErrStoreClosed.
func (s *AlbumStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *AlbumStore) loop() {
	var state AlbumState
	for {
		select {
		case req := <-s.dispatchCh:
			if req.gated && busyFor(state, req.act.kind) {
				req.reply <- dispatchRes{state: snapshot(state), err: ErrOperationInFlight}
				continue
			}
			state = reduce(state, req.act)
			req.reply <- dispatchRes{state: snapshot(state)}
		case reply := <-s.stateCh:
			reply <- snapshot(state)
		case <-s.done:
			return
		}
	}
}

// dispatch applies one action through the loop and returns the state that
// resulted from it.
func (s *AlbumStore) dispatch(act action) (AlbumState, error) {
	return s.send(dispatchReq{act: act, reply: make(chan dispatchRes, 1)})
}

// begin is a gated dispatch: it fails with ErrOperationInFlight instead of
// setting a busy flag that is already set.
func (s *AlbumStore) begin(act action) (AlbumState, error) {
	return s.send(dispatchReq{act: act, gated: true, reply: make(chan dispatchRes, 1)})
}

func (s *AlbumStore) send(req dispatchReq) (AlbumState, error) {
	select {
	case s.dispatchCh <- req:
		res := <-req.reply
		return res.state, res.err
	case <-s.done:
		return AlbumState{}, ErrStoreClosed
	}
}

// State returns a point-in-time copy of the store state.
func (s *AlbumStore) State() AlbumState {
	reply := make(chan AlbumState, 1)
	select {
	case s.stateCh <- reply:
		return <-reply
	case <-s.done:
		return AlbumState{}
	}
}

// GetAlbumByID looks an album up in the cached list without touching the
// backend. Returns nil when it is not cached.
func (s *AlbumStore) GetAlbumByID(id string) *models.Album {
	for _, a := range s.State().Albums {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// ClearError discards the recorded operation error.
func (s *AlbumStore) ClearError() {
	s.dispatch(action{kind: actionErrorCleared})
}

// run is the error boundary every mutation goes through: it clears the
// previous error, runs the operation, and on failure records the error in
// state and surfaces it to the notifier.
func (s *AlbumStore) run(opName string, fn func() error) error {
	s.dispatch(action{kind: actionErrorCleared})
	if err := fn(); err != nil {
		s.dispatch(action{kind: actionErrorSet, err: err})
		s.logger.WithField("operation", opName).Errorf("%v", err)
		s.notifier.ShowError(err.Error())
		return err
	}
	return nil
}

// LoadAlbums refreshes the cached album list from the backend.
func (s *AlbumStore) LoadAlbums(ctx context.Context) ([]*models.Album, error) {
	var albums []*models.Album
	err := s.run("load albums", func() error {
		if _, err := s.begin(action{kind: actionLoadStarted}); err != nil {
			return err
		}
		loaded, err := s.service.ListAlbums(ctx)
		s.dispatch(action{kind: actionLoadFinished, albums: loaded, err: err})
		if err != nil {
			return err
		}
		albums = loaded
		return nil
	})
	return albums, err
}

// LoadAlbum fetches one album with its photo membership and makes it the
// current album. A missing album clears the current album and returns nil
// without error.
func (s *AlbumStore) LoadAlbum(ctx context.Context, id string) (*models.AlbumWithPhotos, error) {
	var album *models.AlbumWithPhotos
	err := s.run("load album", func() error {
		loaded, err := s.service.GetAlbumWithPhotos(ctx, id)
		if err != nil {
			return err
		}
		s.dispatch(action{kind: actionAlbumLoaded, withPhotos: loaded})
		album = loaded
		return nil
	})
	return album, err
}

// CreateAlbum creates an album and prepends it to the cached list.
func (s *AlbumStore) CreateAlbum(ctx context.Context, req *models.CreateAlbumRequest) (*models.Album, error) {
	var created *models.Album
	err := s.run("create album", func() error {
		if _, err := s.begin(action{kind: actionCreateStarted}); err != nil {
			return err
		}
		album, err := s.service.CreateAlbum(ctx, req)
		s.dispatch(action{kind: actionCreateFinished, album: album, err: err})
		if err != nil {
			return err
		}
		created = album
		return nil
	})
	if err == nil {
		s.notifier.ShowSuccess("Album created")
	}
	return created, err
}

// UpdateAlbum applies a partial update and merges the result into the cached
// list and the current album.
func (s *AlbumStore) UpdateAlbum(ctx context.Context, id string, req *models.UpdateAlbumRequest) (*models.Album, error) {
	var updated *models.Album
	err := s.run("update album", func() error {
		if _, err := s.begin(action{kind: actionUpdateStarted}); err != nil {
			return err
		}
		album, err := s.service.UpdateAlbum(ctx, id, req)
		s.dispatch(action{kind: actionUpdateFinished, album: album, err: err})
		if err != nil {
			return err
		}
		updated = album
		return nil
	})
	if err == nil {
		s.notifier.ShowSuccess("Album updated")
	}
	return updated, err
}

// DeleteAlbum removes an album. The default album is refused. Deleting the
// current album clears it.
func (s *AlbumStore) DeleteAlbum(ctx context.Context, id string) error {
	err := s.run("delete album", func() error {
		if _, err := s.begin(action{kind: actionDeleteStarted}); err != nil {
			return err
		}
		err := s.service.DeleteAlbum(ctx, id)
		s.dispatch(action{kind: actionDeleteFinished, albumID: id, err: err})
		return err
	})
	if err == nil {
		s.notifier.ShowSuccess("Album deleted")
	}
	return err
}

// AddPhotoToAlbum records membership and patches the cached counts. Adding a
// photo that is already a member changes nothing.
func (s *AlbumStore) AddPhotoToAlbum(ctx context.Context, albumID, photoID string) error {
	return s.run("add photo to album", func() error {
		changed, err := s.service.AddPhoto(ctx, albumID, photoID)
		if err != nil {
			return err
		}
		if changed {
			s.dispatch(action{kind: actionPhotoAdded, albumID: albumID, photoID: photoID})
		}
		return nil
	})
}

// RemovePhotoFromAlbum removes membership and patches the cached counts.
func (s *AlbumStore) RemovePhotoFromAlbum(ctx context.Context, albumID, photoID string) error {
	return s.run("remove photo from album", func() error {
		changed, err := s.service.RemovePhoto(ctx, albumID, photoID)
		if err != nil {
			return err
		}
		if changed {
			s.dispatch(action{kind: actionPhotoRemoved, albumID: albumID, photoID: photoID})
		}
		return nil
	})
}

// MovePhotoBetweenAlbums moves a photo from one album to another. The
// backend move is transactional and the cached counts are patched in a
// single reduce step, so observers never see the intermediate state.
func (s *AlbumStore) MovePhotoBetweenAlbums(ctx context.Context, op models.PhotoMoveOperation) error {
	err := s.run("move photo", func() error {
		removed, added, err := s.service.MovePhoto(ctx, op)
		if err != nil {
			return err
		}
		if removed || added {
			s.dispatch(action{kind: actionPhotoMoved, move: op, moveRemoved: removed, moveAdded: added})
		}
		return nil
	})
	if err == nil {
		s.notifier.ShowSuccess("Photo moved")
	}
	return err
}

func busyFor(state AlbumState, kind actionKind) bool {
	switch kind {
	case actionLoadStarted:
		return state.IsLoading
	case actionCreateStarted:
		return state.IsCreating
	case actionUpdateStarted:
		return state.IsUpdating
	case actionDeleteStarted:
		return state.IsDeleting
	}
	return false
}

// snapshot copies the slice headers so callers cannot perturb the loop's
// state by appending to what they were handed.
func snapshot(state AlbumState) AlbumState {
	out := state
	if state.Albums != nil {
		out.Albums = make([]*models.Album, len(state.Albums))
		copy(out.Albums, state.Albums)
	}
	if state.CurrentAlbum != nil {
		cur := *state.CurrentAlbum
		cur.Photos = append([]string(nil), state.CurrentAlbum.Photos...)
		out.CurrentAlbum = &cur
	}
	return out
}
