package anchor

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinerstack/mariner-guard/internal/geo"
	"github.com/marinerstack/mariner-guard/internal/models"
	"github.com/marinerstack/mariner-guard/internal/utils"
)

// memStore keeps records in memory and counts saves.
type memStore struct {
	rec   Record
	saves int
}

func (s *memStore) Load() (Record, error) { return s.rec.Clone(), nil }

func (s *memStore) Save(rec Record) error {
	s.rec = rec
	s.saves++
	return nil
}

func testWatchLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWatch(t *testing.T, rec Record) (*Watch, *memStore) {
	t.Helper()
	store := &memStore{rec: rec}
	w, err := NewWatch(store, testWatchLogger())
	require.NoError(t, err)
	return w, store
}

func TestDropFromRaised(t *testing.T) {
	w, store := newTestWatch(t, DefaultRecord(30))

	var requested []string
	w.SetModeRequester(func(_ context.Context, mode string) {
		requested = append(requested, mode)
	})

	pos := models.Position{Latitude: 50.768, Longitude: -1.291}
	require.NoError(t, w.Drop(context.Background(), pos))

	rec := w.Snapshot()
	assert.Equal(t, StateDropping, rec.State)
	require.NotNil(t, rec.Position)
	assert.Equal(t, pos, *rec.Position)
	assert.NotNil(t, rec.DroppedAt)
	assert.Nil(t, rec.RaisedAt)
	assert.True(t, rec.Monitoring())

	assert.Equal(t, 1, store.saves)
	assert.Equal(t, StateDropping, store.rec.State)
	assert.Equal(t, []string{ModeAnchored}, requested)
}

func TestDropWhileDownConflicts(t *testing.T) {
	w, store := newTestWatch(t, Record{State: StateDropped, RadiusMeters: 30})

	err := w.Drop(context.Background(), models.Position{Latitude: 50, Longitude: -1})
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Zero(t, store.saves)
}

func TestConfirmDropped(t *testing.T) {
	w, _ := newTestWatch(t, DefaultRecord(30))
	require.NoError(t, w.Drop(context.Background(), models.Position{Latitude: 50, Longitude: -1}))

	refined := models.Position{Latitude: 50.0001, Longitude: -1.0001}
	require.NoError(t, w.ConfirmDropped(&refined))

	rec := w.Snapshot()
	assert.Equal(t, StateDropped, rec.State)
	assert.Equal(t, refined, *rec.Position)

	// Confirming again is a lifecycle conflict.
	err := w.ConfirmDropped(nil)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestSetRadius(t *testing.T) {
	w, store := newTestWatch(t, DefaultRecord(30))

	err := w.SetRadius(0)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	require.NoError(t, w.SetRadius(45))
	assert.Equal(t, 45.0, w.Snapshot().RadiusMeters)
	assert.Equal(t, 45.0, store.rec.RadiusMeters)
}

func TestRepositionFromScope(t *testing.T) {
	vesselPos := models.Position{Latitude: 50.768, Longitude: -1.291}
	w, _ := newTestWatch(t, Record{State: StateDropping, Position: &vesselPos, RadiusMeters: 30})

	vessel := models.OwnVessel{Position: &vesselPos, CourseDeg: 90}
	require.NoError(t, w.RepositionFromScope(50, 30, vessel))

	rec := w.Snapshot()
	assert.Equal(t, StateDropped, rec.State)
	require.NotNil(t, rec.RodeLengthMeters)
	assert.Equal(t, 50.0, *rec.RodeLengthMeters)
	require.NotNil(t, rec.AnchorDepthMeters)
	assert.Equal(t, 30.0, *rec.AnchorDepthMeters)

	// Horizontal scope of a 50 m rode in 30 m of water is 40 m, laid out
	// along the course over ground.
	require.NotNil(t, rec.Position)
	assert.InDelta(t, 40, geo.DistanceMeters(vesselPos, *rec.Position), 0.5)
	assert.InDelta(t, 90, geo.Bearing(vesselPos, *rec.Position), 1)
}

func TestRepositionNearVerticalRode(t *testing.T) {
	vesselPos := models.Position{Latitude: 50.768, Longitude: -1.291}
	w, _ := newTestWatch(t, Record{State: StateDropped, Position: &vesselPos, RadiusMeters: 30})

	// Rode barely longer than the depth: the anchor sits under the vessel.
	vessel := models.OwnVessel{Position: &vesselPos, CourseDeg: 45}
	require.NoError(t, w.RepositionFromScope(10, 9.999, vessel))

	rec := w.Snapshot()
	assert.Equal(t, vesselPos, *rec.Position)
}

func TestRepositionValidation(t *testing.T) {
	vesselPos := models.Position{Latitude: 50.768, Longitude: -1.291}
	w, _ := newTestWatch(t, Record{State: StateDropped, Position: &vesselPos, RadiusMeters: 30})

	vessel := models.OwnVessel{Position: &vesselPos}
	assert.Equal(t, utils.KindValidation, utils.KindOf(w.RepositionFromScope(0, 10, vessel)))
	assert.Equal(t, utils.KindValidation, utils.KindOf(w.RepositionFromScope(50, 0, vessel)))
	assert.Equal(t, utils.KindUnavailable, utils.KindOf(w.RepositionFromScope(50, 30, models.OwnVessel{})))

	raised, _ := newTestWatch(t, DefaultRecord(30))
	assert.Equal(t, utils.KindConflict, utils.KindOf(raised.RepositionFromScope(50, 30, vessel)))
}

func TestRaiseCycle(t *testing.T) {
	anchorPos := models.Position{Latitude: 50.768, Longitude: -1.291}
	rode, depth := 50.0, 30.0
	w, store := newTestWatch(t, Record{
		State:             StateDropped,
		Position:          &anchorPos,
		RadiusMeters:      30,
		RodeLengthMeters:  &rode,
		AnchorDepthMeters: &depth,
	})

	var requested []string
	w.SetModeRequester(func(_ context.Context, mode string) {
		requested = append(requested, mode)
	})

	require.NoError(t, w.Raise())
	assert.Equal(t, StateRaising, w.Snapshot().State)
	assert.False(t, w.IsMonitoring())

	require.NoError(t, w.ConfirmRaised(context.Background()))

	rec := w.Snapshot()
	assert.Equal(t, StateRaised, rec.State)
	assert.Nil(t, rec.Position)
	assert.Nil(t, rec.RodeLengthMeters)
	assert.Nil(t, rec.AnchorDepthMeters)
	assert.NotNil(t, rec.RaisedAt)

	assert.Equal(t, StateRaised, store.rec.State)
	assert.Equal(t, []string{ModeUnderway}, requested)
}

func TestRaiseWhenRaisedConflicts(t *testing.T) {
	w, _ := newTestWatch(t, DefaultRecord(30))
	assert.Equal(t, utils.KindConflict, utils.KindOf(w.Raise()))
	assert.Equal(t, utils.KindConflict, utils.KindOf(w.ConfirmRaised(context.Background())))
}

func TestNewWatchResumesMonitoring(t *testing.T) {
	anchorPos := models.Position{Latitude: 45, Longitude: -1}
	w, _ := newTestWatch(t, Record{State: StateDropped, Position: &anchorPos, RadiusMeters: 25})

	assert.True(t, w.IsMonitoring())
	assert.Equal(t, 25.0, w.Snapshot().RadiusMeters)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	anchorPos := models.Position{Latitude: 45, Longitude: -1}
	w, _ := newTestWatch(t, Record{State: StateDropped, Position: &anchorPos, RadiusMeters: 25})

	snap := w.Snapshot()
	snap.Position.Latitude = 0

	assert.Equal(t, 45.0, w.Snapshot().Position.Latitude)
}
