package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	RepeatNone    = "none"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

// PlaylistDocVersion is the schema version of the serialized playlist column.
const PlaylistDocVersion = 1

// PlaylistEntry is one ordered track reference inside a schedule's playlist.
// The entries are snapshots of the track at assignment time; the track row
// itself may be deleted later, in which case the entry dangles and is
// filtered when the playlist is loaded into the player session.
type PlaylistEntry struct {
	TrackID    int64  `json:"id"`
	SongName   string `json:"songName"`
	SongArtist string `json:"songArtist"`
	SongSrc    string `json:"songSrc"`
}

// PlaylistDoc is the persisted shape of the playlist column.
type PlaylistDoc struct {
	Version int             `json:"version"`
	Items   []PlaylistEntry `json:"items"`
}

type Schedule struct {
	ID         int64      `db:"id"            json:"id"`
	Name       string     `db:"schedule_name" json:"scheduleName"`
	StartDate  string     `db:"start_date"    json:"startDate"`
	EndDate    string     `db:"end_date"      json:"endDate"`
	StartTime  string     `db:"start_time"    json:"startTime"`
	EndTime    string     `db:"end_time"      json:"endTime"`
	RepeatType string     `db:"repeat_type"   json:"repeatType"`
	Weekdays   StringList `db:"weekdays"      json:"weekdays"`
	MonthDates IntList    `db:"month_dates"   json:"monthDates"`

	PlaylistRaw []byte          `db:"playlist" json:"-"`
	Playlist    []PlaylistEntry `db:"-"        json:"playlist"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DecodePlaylist validates and unpacks the serialized playlist column into
// s.Playlist. A payload that is not a version-1 document is rejected rather
// than passed through.
func (s *Schedule) DecodePlaylist() error {
	if len(s.PlaylistRaw) == 0 {
		s.Playlist = []PlaylistEntry{}
		return nil
	}
	var doc PlaylistDoc
	if err := json.Unmarshal(s.PlaylistRaw, &doc); err != nil {
		return fmt.Errorf("playlist document for schedule %d is not valid JSON: %w", s.ID, err)
	}
	if doc.Version != PlaylistDocVersion {
		return fmt.Errorf("playlist document for schedule %d has unsupported version %d", s.ID, doc.Version)
	}
	if doc.Items == nil {
		doc.Items = []PlaylistEntry{}
	}
	s.Playlist = doc.Items
	return nil
}

// EncodePlaylist packs entries into the serialized playlist column shape.
func EncodePlaylist(items []PlaylistEntry) ([]byte, error) {
	if items == nil {
		items = []PlaylistEntry{}
	}
	return json.Marshal(PlaylistDoc{Version: PlaylistDocVersion, Items: items})
}

// ExceptionKey identifies one suppressed occurrence of a recurring schedule.
type ExceptionKey struct {
	ScheduleID int64
	Date       string // "YYYY-MM-DD"
}

// StringList stores a JSON string array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src any) error {
	return scanJSONList(src, l)
}

// IntList stores a JSON number array in a TEXT column.
type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *IntList) Scan(src any) error {
	return scanJSONList(src, l)
}

func scanJSONList(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON list", src)
	}
}
