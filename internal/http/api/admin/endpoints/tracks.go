package endpoints

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/http/api"
	"github.com/sonatech-av/cadenza/internal/http/api/admin/packets"
	"github.com/sonatech-av/cadenza/internal/metadata"
	"github.com/sonatech-av/cadenza/internal/redis"
	"github.com/sonatech-av/cadenza/internal/storage"
)

const songsEtagKey = "etag:songs"

type TrackController struct {
	store   db.Store
	storage storage.Storage
}

func NewTrackController(store db.Store, storageSystem storage.Storage) *TrackController {
	return &TrackController{store: store, storage: storageSystem}
}

func TrackModule(store db.Store, storageSystem storage.Storage) api.Module {
	ctl := NewTrackController(store, storageSystem)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/uploads", ctl.uploadTrack)
		// /songs and /songs-list are aliases, kept for the player surface
		c.GET("/songs", ctl.listSongs)
		c.GET("/songs-list", ctl.listSongs)
		c.DELETE("/songs/:id", ctl.deleteTrack)
	})
}

func (t *TrackController) uploadTrack(ctx *gin.Context) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("songFile")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "All fields are required"}
	}

	name := ctx.PostForm("songName")
	artist := ctx.PostForm("songArtist")

	// fall back to the file's own tags when the form fields are blank
	var duration int
	if f, err := fileHeader.Open(); err == nil {
		info := metadata.Extract(f, fileHeader.Filename)
		if name == "" {
			name = info.Title
		}
		if artist == "" {
			artist = info.Artist
		}
		duration = info.Duration
		_ = f.Close()
	}
	if name == "" || artist == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "All fields are required"}
	}

	fileRef, err := t.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("failed to store upload")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to store file"}
	}

	track, err := t.store.CreateTrack(name, artist, fileRef, duration)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB insertion failed"}
	}

	invalidateEtag(ctx, songsEtagKey)
	return packets.UploadResponse{Message: "Music uploaded successfully!", SongID: track.ID}, nil
}

func (t *TrackController) listSongs(ctx *gin.Context) (any, *api.APIError) {
	if notModified(ctx, songsEtagKey) {
		return nil, nil
	}

	tracks, err := t.store.ListTracks()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB error"}
	}

	response := make([]packets.SongResponse, 0, len(tracks))
	for _, tr := range tracks {
		response = append(response, packets.SongResponse{
			ID:         tr.ID,
			SongName:   tr.Name,
			SongArtist: tr.Artist,
			SongSrc:    tr.Src(),
			SongAvatar: "/images/default-avatar.png",
			Duration:   tr.Duration,
		})
	}

	serveWithEtag(ctx, songsEtagKey, response)
	return response, nil
}

func (t *TrackController) deleteTrack(ctx *gin.Context) (any, *api.APIError) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	track, err := t.store.GetTrackByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "song not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB error"}
	}

	// deleting a track referenced by a schedule is allowed; the playlist
	// entry dangles and is filtered when loaded into the player
	if err := t.store.DeleteTrack(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB delete failed"}
	}
	if err := t.storage.DeleteFile(track.FilePath); err != nil {
		log.Warn().Err(err).Str("file", track.FilePath).Msg("failed to remove stored file")
	}

	invalidateEtag(ctx, songsEtagKey)
	return packets.MessageResponse{Message: fmt.Sprintf("Song %d deleted", id)}, nil
}

// notModified answers the request from the redis-cached ETag when the
// client already holds the current representation.
func notModified(ctx *gin.Context, key string) bool {
	if !redis.Enabled() {
		return false
	}
	etag, ok := redis.Get(ctx, key)
	if !ok || etag == "" {
		return false
	}
	return replyNotModified(ctx, etag)
}

// replyNotModified commits a 304 when the client's If-None-Match matches the
// cached ETag. The status must be written immediately; otherwise the
// endpoint adapter sees an untouched writer and appends a 200 JSON body.
func replyNotModified(ctx *gin.Context, etag string) bool {
	if ctx.GetHeader("If-None-Match") != etag {
		return false
	}
	ctx.Header("ETag", etag)
	ctx.AbortWithStatus(http.StatusNotModified)
	return true
}

// serveWithEtag stamps the response ETag and caches it so mutations can
// invalidate it with a single key delete.
func serveWithEtag(ctx *gin.Context, key string, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		return
	}
	etag := fmt.Sprintf("%q", fmt.Sprintf("%x", sha256.Sum256(raw)))
	ctx.Header("ETag", etag)
	if redis.Enabled() {
		redis.Set(ctx, key, etag, time.Hour)
	}
}

func invalidateEtag(ctx *gin.Context, key string) {
	if redis.Enabled() {
		redis.Del(ctx, key)
	}
}
