package packets

// SongResponse is the wire shape the player surfaces consume.
type SongResponse struct {
	ID         int64  `json:"id"`
	SongName   string `json:"songName"`
	SongArtist string `json:"songArtist"`
	SongSrc    string `json:"songSrc"`
	SongAvatar string `json:"songAvatar"`
	Duration   int    `json:"duration"`
}

type UploadResponse struct {
	Message string `json:"message"`
	SongID  int64  `json:"songId"`
}

type CreateScheduleResponse struct {
	Message    string `json:"message"`
	ScheduleID int64  `json:"scheduleId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
