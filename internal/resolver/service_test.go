package resolver

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/model"
)

func newTestStore(t *testing.T) db.Store {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, db.RunMigrations("../../migrations"))
	return db.NewStore(nil)
}

func TestServiceActiveNone(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)

	res, err := svc.Active(time.Now())
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Nil(t, res.Schedule)
}

func TestServiceActiveWithAuditOnce(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)

	now := time.Now()
	created, err := store.CreateSchedule(model.Schedule{
		Name:       "Morning Mix",
		StartDate:  now.AddDate(0, 0, -1).Format("2006-01-02"),
		EndDate:    now.AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime:  "00:00:00",
		EndTime:    "23:59:59",
		RepeatType: model.RepeatNone,
		Playlist:   []model.PlaylistEntry{{TrackID: 1, SongName: "Song", SongSrc: "/uploads/files/song.mp3"}},
	})
	require.NoError(t, err)

	res, err := svc.Active(now)
	require.NoError(t, err)
	require.True(t, res.Active)
	assert.Equal(t, created.ID, res.Schedule.ID)
	assert.Equal(t, "Morning Mix", res.Schedule.Name)

	// resolving the same episode again must not append a second entry
	res, err = svc.Active(now.Add(time.Second))
	require.NoError(t, err)
	require.True(t, res.Active)

	logs, err := store.ListActivationLogs()
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, created.ID, logs[0].ScheduleID)
	assert.Nil(t, logs[0].EndedAt)
}

func TestServiceExcludesCorruptPlaylist(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store)

	now := time.Now()
	created, err := store.CreateSchedule(model.Schedule{
		Name:       "Broken",
		StartDate:  now.AddDate(0, 0, -1).Format("2006-01-02"),
		EndDate:    now.AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime:  "00:00:00",
		EndTime:    "23:59:59",
		RepeatType: model.RepeatNone,
		Playlist:   []model.PlaylistEntry{{TrackID: 1, SongName: "Song"}},
	})
	require.NoError(t, err)

	_, err = db.DB.Exec(`UPDATE schedules SET playlist = 'not json' WHERE id = ?;`, created.ID)
	require.NoError(t, err)

	res, err := svc.Active(now)
	require.NoError(t, err)
	assert.False(t, res.Active)
}
