package model

import (
	"strings"
	"time"
)

type Track struct {
	ID        int64     `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Artist    string    `db:"artist"     json:"artist"`
	FilePath  string    `db:"file_path"  json:"filePath"`
	Duration  int       `db:"duration"   json:"duration"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Src is the URL a player surface streams the track from. Locally stored
// files are served under /uploads/files; CDN-backed files carry a full URL.
func (t Track) Src() string {
	if strings.HasPrefix(t.FilePath, "http://") || strings.HasPrefix(t.FilePath, "https://") {
		return t.FilePath
	}
	return "/uploads/files/" + t.FilePath
}
