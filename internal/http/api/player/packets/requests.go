package packets

type SeekRequest struct {
	Percent float64 `json:"percent" binding:"min=0,max=100"`
}

type OverrideRequest struct {
	TrackID int64 `json:"trackId" binding:"required"`
}
