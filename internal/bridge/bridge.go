// Package bridge polls the resolver on a fixed interval, diffs the result
// against the previously observed active schedule, and drives the player
// surface and event fan-out on transitions.
package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/events"
	"github.com/sonatech-av/cadenza/internal/model"
	"github.com/sonatech-av/cadenza/internal/player"
	"github.com/sonatech-av/cadenza/internal/resolver"
)

// Source answers the active-schedule question. Satisfied by
// *resolver.Service in process and by an HTTP client against a remote
// /schedules/active in split deployments.
type Source interface {
	Active(now time.Time) (resolver.Result, error)
}

// Bridge owns the polling loop and the last-observed active schedule id.
// The state is explicit and instance-scoped; constructing a second Bridge
// yields an independent observer.
type Bridge struct {
	source  Source
	bus     *events.Bus
	session *player.Session
	store   db.Store
	cron    *cron.Cron
	every   time.Duration

	mu         sync.Mutex
	lastActive *model.Schedule
}

// New wires a bridge. bus, session and store may be nil when the caller
// only wants a subset of the side effects (tests do this).
func New(source Source, bus *events.Bus, session *player.Session, store db.Store, every time.Duration) *Bridge {
	if every <= 0 {
		every = time.Second
	}
	return &Bridge{
		source:  source,
		bus:     bus,
		session: session,
		store:   store,
		// a tick that outlasts the interval delays the next tick instead
		// of overlapping it, preserving the one-event-pair-per-transition
		// guarantee
		cron:  cron.New(cron.WithSeconds(), cron.WithChain(cron.DelayIfStillRunning(cron.DiscardLogger))),
		every: every,
	}
}

// Start begins polling. Stop must be called on shutdown.
func (b *Bridge) Start() error {
	if _, err := b.cron.AddFunc(fmt.Sprintf("@every %s", b.every), b.tick); err != nil {
		return fmt.Errorf("failed to schedule poll: %w", err)
	}
	b.cron.Start()
	log.Info().Dur("interval", b.every).Msg("activation bridge started")
	return nil
}

// Stop cancels the poll loop and waits for a running tick to finish.
func (b *Bridge) Stop() {
	ctx := b.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("activation bridge stopped")
}

func (b *Bridge) tick() {
	now := time.Now()
	res, err := b.source.Active(now)
	if err != nil {
		// transient failure: keep lastActive untouched so the next
		// successful tick does not fabricate an END/START pair
		log.Warn().Err(err).Msg("active schedule poll failed")
		return
	}
	b.apply(res, now)
}

// apply diffs the resolver result against the previously observed state and
// emits transitions. An id change with both sides non-nil emits END then
// START within the same tick.
func (b *Bridge) apply(res resolver.Result, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.lastActive
	switch {
	case prev == nil && res.Active:
		b.emitStart(res.Schedule, now)
		b.loadSchedule(res.Schedule)
		b.lastActive = res.Schedule

	case prev != nil && !res.Active:
		b.emitEnd(prev, now)
		b.loadLibrary()
		b.lastActive = nil

	case prev != nil && res.Active && prev.ID != res.Schedule.ID:
		b.emitEnd(prev, now)
		b.emitStart(res.Schedule, now)
		b.loadSchedule(res.Schedule)
		b.lastActive = res.Schedule
	}
}

func (b *Bridge) emitStart(sc *model.Schedule, now time.Time) {
	log.Info().Int64("schedule_id", sc.ID).Str("schedule", sc.Name).Msg("schedule started")
	if b.bus != nil {
		b.bus.Publish(events.Event{
			Type:         events.TypeScheduleStarted,
			ScheduleID:   sc.ID,
			ScheduleName: sc.Name,
			At:           now,
		})
	}
}

func (b *Bridge) emitEnd(sc *model.Schedule, now time.Time) {
	log.Info().Int64("schedule_id", sc.ID).Str("schedule", sc.Name).Msg("schedule ended")
	if b.bus != nil {
		b.bus.Publish(events.Event{
			Type:         events.TypeScheduleEnded,
			ScheduleID:   sc.ID,
			ScheduleName: sc.Name,
			At:           now,
		})
	}
	if b.store != nil {
		if err := b.store.CloseActivationLog(sc.ID, now); err != nil {
			log.Error().Err(err).Int64("schedule_id", sc.ID).Msg("failed to close activation log")
		}
	}
}

// loadSchedule seeds the player session from the schedule's playlist,
// filtering entries whose track no longer exists.
func (b *Bridge) loadSchedule(sc *model.Schedule) {
	if b.session == nil {
		return
	}
	b.session.LoadSchedule(sc.ID, b.buildQueue(sc))
}

func (b *Bridge) loadLibrary() {
	if b.session == nil {
		return
	}
	items := []player.QueueItem{}
	if b.store != nil {
		tracks, err := b.store.ListTracks()
		if err != nil {
			log.Warn().Err(err).Msg("failed to load library for default surface")
		}
		for _, t := range tracks {
			items = append(items, player.QueueItem{
				TrackID:  t.ID,
				Name:     t.Name,
				Artist:   t.Artist,
				Src:      t.Src(),
				Duration: t.Duration,
			})
		}
	}
	b.session.LoadLibrary(items)
}

func (b *Bridge) buildQueue(sc *model.Schedule) []player.QueueItem {
	items := make([]player.QueueItem, 0, len(sc.Playlist))

	var known map[int64]model.Track
	if b.store != nil {
		if tracks, err := b.store.ListTracks(); err != nil {
			// degrade to the playlist as stored rather than refusing to play
			log.Warn().Err(err).Msg("failed to list tracks, playlist served unfiltered")
		} else {
			known = make(map[int64]model.Track, len(tracks))
			for _, t := range tracks {
				known[t.ID] = t
			}
		}
	}

	for _, entry := range sc.Playlist {
		item := player.QueueItem{
			TrackID: entry.TrackID,
			Name:    entry.SongName,
			Artist:  entry.SongArtist,
			Src:     entry.SongSrc,
		}
		if known != nil {
			t, ok := known[entry.TrackID]
			if !ok {
				log.Warn().Int64("schedule_id", sc.ID).Int64("track_id", entry.TrackID).
					Str("song", entry.SongName).Msg("skipping playlist entry, track no longer exists")
				continue
			}
			item.Duration = t.Duration
		}
		items = append(items, item)
	}
	return items
}
