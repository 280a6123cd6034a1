package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonatech-av/cadenza/internal/events"
	"github.com/sonatech-av/cadenza/internal/model"
	"github.com/sonatech-av/cadenza/internal/player"
	"github.com/sonatech-av/cadenza/internal/resolver"
)

type staticSource struct {
	res resolver.Result
	err error
}

func (s *staticSource) Active(time.Time) (resolver.Result, error) { return s.res, s.err }

// stubStore records activation-log closes; the rest of the Store surface is
// unused by the bridge paths under test.
type stubStore struct {
	tracks []model.Track
	closed []int64
}

func (s *stubStore) CreateTrack(string, string, string, int) (model.Track, error) {
	return model.Track{}, nil
}
func (s *stubStore) GetTrackByID(int64) (model.Track, error)          { return model.Track{}, nil }
func (s *stubStore) ListTracks() ([]model.Track, error)               { return s.tracks, nil }
func (s *stubStore) DeleteTrack(int64) error                          { return nil }
func (s *stubStore) CreateSchedule(sc model.Schedule) (model.Schedule, error) {
	return sc, nil
}
func (s *stubStore) GetSchedule(int64) (model.Schedule, error)     { return model.Schedule{}, nil }
func (s *stubStore) ListSchedules() ([]model.Schedule, error)      { return nil, nil }
func (s *stubStore) UpdateSchedule(int64, model.Schedule) error    { return nil }
func (s *stubStore) DeleteSchedule(int64) error                    { return nil }
func (s *stubStore) DeleteAllSchedules() error                     { return nil }
func (s *stubStore) CreateScheduleException(int64, string) error   { return nil }
func (s *stubStore) ListScheduleExceptions() (map[model.ExceptionKey]bool, error) {
	return nil, nil
}
func (s *stubStore) LogActivationOnce(int64, string, time.Time, time.Time) (bool, error) {
	return false, nil
}
func (s *stubStore) CloseActivationLog(id int64, _ time.Time) error {
	s.closed = append(s.closed, id)
	return nil
}
func (s *stubStore) ListActivationLogs() ([]model.ActivationLog, error) { return nil, nil }

func activeResult(id int64, name string) resolver.Result {
	return resolver.Result{
		Active: true,
		Schedule: &model.Schedule{
			ID:   id,
			Name: name,
			Playlist: []model.PlaylistEntry{
				{TrackID: 1, SongName: "Song", SongSrc: "/uploads/files/song.mp3"},
			},
		},
	}
}

func drain(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestApplyStartTransition(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	session := player.NewSession()
	store := &stubStore{tracks: []model.Track{{ID: 1, Name: "Song", Duration: 200}}}

	b := New(&staticSource{}, bus, session, store, time.Second)
	now := time.Now()

	b.apply(activeResult(5, "Morning"), now)

	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeScheduleStarted, got[0].Type)
	assert.Equal(t, int64(5), got[0].ScheduleID)

	snap := session.State()
	assert.True(t, snap.Playing)
	require.NotNil(t, snap.ScheduleID)
	assert.Equal(t, int64(5), *snap.ScheduleID)
}

func TestApplyNoTransitionOnRepeat(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()

	b := New(&staticSource{}, bus, nil, nil, time.Second)
	now := time.Now()

	b.apply(activeResult(5, "Morning"), now)
	b.apply(activeResult(5, "Morning"), now.Add(time.Second))
	b.apply(activeResult(5, "Morning"), now.Add(2*time.Second))

	// one START for the whole episode, no matter how many ticks observe it
	got := drain(sub)
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeScheduleStarted, got[0].Type)
}

func TestApplyEndTransition(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	session := player.NewSession()
	store := &stubStore{}

	b := New(&staticSource{}, bus, session, store, time.Second)
	now := time.Now()

	b.apply(activeResult(5, "Morning"), now)
	b.apply(resolver.Result{}, now.Add(time.Minute))

	got := drain(sub)
	require.Len(t, got, 2)
	assert.Equal(t, events.TypeScheduleStarted, got[0].Type)
	assert.Equal(t, events.TypeScheduleEnded, got[1].Type)

	// the audit episode is stamped closed on END
	assert.Equal(t, []int64{5}, store.closed)

	snap := session.State()
	assert.False(t, snap.Playing)
	assert.Nil(t, snap.ScheduleID)
}

func TestApplyHandover(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	session := player.NewSession()
	store := &stubStore{}

	b := New(&staticSource{}, bus, session, store, time.Second)
	now := time.Now()

	b.apply(activeResult(5, "Morning"), now)
	b.apply(activeResult(9, "Afternoon"), now.Add(time.Minute))

	got := drain(sub)
	require.Len(t, got, 3)
	assert.Equal(t, events.TypeScheduleStarted, got[0].Type)
	assert.Equal(t, events.TypeScheduleEnded, got[1].Type)
	assert.Equal(t, int64(5), got[1].ScheduleID)
	assert.Equal(t, events.TypeScheduleStarted, got[2].Type)
	assert.Equal(t, int64(9), got[2].ScheduleID)

	assert.Equal(t, []int64{5}, store.closed)

	snap := session.State()
	require.NotNil(t, snap.ScheduleID)
	assert.Equal(t, int64(9), *snap.ScheduleID)
}

func TestTickErrorPreservesState(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	src := &staticSource{res: activeResult(5, "Morning")}

	b := New(src, bus, nil, nil, time.Second)
	b.tick()
	require.Len(t, drain(sub), 1)

	// a failed poll must not fabricate an END
	src.err = errors.New("db locked")
	b.tick()
	assert.Empty(t, drain(sub))

	// recovery with the same schedule active emits nothing new
	src.err = nil
	b.tick()
	assert.Empty(t, drain(sub))
}

func TestBuildQueueFiltersDanglingEntries(t *testing.T) {
	store := &stubStore{tracks: []model.Track{{ID: 1, Name: "Song", Duration: 200}}}
	session := player.NewSession()

	b := New(&staticSource{}, nil, session, store, time.Second)
	sc := &model.Schedule{
		ID: 5,
		Playlist: []model.PlaylistEntry{
			{TrackID: 1, SongName: "Song", SongSrc: "/uploads/files/song.mp3"},
			{TrackID: 42, SongName: "Deleted", SongSrc: "/uploads/files/deleted.mp3"},
		},
	}

	items := b.buildQueue(sc)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].TrackID)
	assert.Equal(t, 200, items[0].Duration)
}
