// Package player holds the playback surface state: the current queue, the
// position within it, and the ephemeral override mode. Decoding and output
// are delegated to the client's media element; the session is the single
// source of truth for what should be playing.
package player

import (
	"sync"
	"time"
)

// QueueItem is one playable entry. Entries are resolved against the track
// store when a playlist is loaded, so every item here is known to exist at
// load time.
type QueueItem struct {
	TrackID  int64  `json:"id"`
	Name     string `json:"songName"`
	Artist   string `json:"songArtist"`
	Src      string `json:"songSrc"`
	Duration int    `json:"duration"`
}

// Snapshot is a copy of the session state handed to readers.
type Snapshot struct {
	Track       *QueueItem `json:"track,omitempty"`
	Index       int        `json:"index"`
	QueueLength int        `json:"queueLength"`
	Playing     bool       `json:"playing"`
	Position    int        `json:"position"`
	Override    bool       `json:"override"`
	ScheduleID  *int64     `json:"scheduleId,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Session is safe for concurrent use by the HTTP handlers and the
// activation bridge.
type Session struct {
	mu         sync.RWMutex
	queue      []QueueItem
	index      int
	playing    bool
	position   int // seconds into the current item
	scheduleID *int64
	override   *QueueItem
}

func NewSession() *Session {
	return &Session{}
}

// LoadSchedule replaces the queue with a schedule's playlist and starts
// playback at the first entry. Clears any override.
func (s *Session) LoadSchedule(scheduleID int64, items []QueueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := scheduleID
	s.queue = items
	s.index = 0
	s.position = 0
	s.playing = len(items) > 0
	s.scheduleID = &id
	s.override = nil
}

// LoadLibrary replaces the queue with the default (unscheduled) track list.
// Playback does not auto-start on the default surface.
func (s *Session) LoadLibrary(items []QueueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = items
	s.index = 0
	s.position = 0
	s.playing = false
	s.scheduleID = nil
	s.override = nil
}

// Next advances circularly. On a queue of length 1 the index is unchanged.
func (s *Session) Next() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.queue); n > 0 {
		s.index = (s.index + 1) % n
		s.position = 0
		s.playing = true
	}
	return s.snapshotLocked()
}

// Previous steps back circularly. On a queue of length 1 the index is
// unchanged.
func (s *Session) Previous() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.queue); n > 0 {
		s.index = (s.index - 1 + n) % n
		s.position = 0
		s.playing = true
	}
	return s.snapshotLocked()
}

// Toggle flips play/pause and reports the new playing state.
func (s *Session) Toggle() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playing = !s.playing
	return s.snapshotLocked()
}

// Seek maps a [0,100] percentage onto an absolute offset into the current
// item. Out-of-range values are clamped.
func (s *Session) Seek(percent float64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if cur := s.currentLocked(); cur != nil {
		s.position = int(percent / 100 * float64(cur.Duration))
	}
	return s.snapshotLocked()
}

// Ended handles natural end-of-track. In override mode the scheduled queue
// resumes at its last known index; otherwise playback advances circularly.
func (s *Session) Ended() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.override != nil {
		s.override = nil
		s.position = 0
		s.playing = len(s.queue) > 0
		return s.snapshotLocked()
	}
	if n := len(s.queue); n > 0 {
		s.index = (s.index + 1) % n
		s.position = 0
	}
	return s.snapshotLocked()
}

// Override temporarily substitutes an arbitrary track. The queue and its
// index are untouched; override state is never persisted.
func (s *Session) Override(item QueueItem) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.override = &item
	s.position = 0
	s.playing = true
	return s.snapshotLocked()
}

// Resume leaves override mode, re-seeding from the queue at its last known
// index.
func (s *Session) Resume() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.override = nil
	s.position = 0
	s.playing = len(s.queue) > 0
	return s.snapshotLocked()
}

// ScheduleID reports the schedule currently driving the queue, or nil on
// the default surface.
func (s *Session) ScheduleID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.scheduleID == nil {
		return nil
	}
	id := *s.scheduleID
	return &id
}

// State returns a copy of the current session state.
func (s *Session) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) currentLocked() *QueueItem {
	if s.override != nil {
		return s.override
	}
	if len(s.queue) == 0 {
		return nil
	}
	return &s.queue[s.index]
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Index:       s.index,
		QueueLength: len(s.queue),
		Playing:     s.playing,
		Position:    s.position,
		Override:    s.override != nil,
		UpdatedAt:   time.Now(),
	}
	if cur := s.currentLocked(); cur != nil {
		c := *cur
		snap.Track = &c
	}
	if s.scheduleID != nil {
		id := *s.scheduleID
		snap.ScheduleID = &id
	}
	return snap
}
