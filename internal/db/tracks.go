package db

import (
	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/model"
)

func CreateTrack(name, artist, filePath string, duration int) (model.Track, error) {
	var t model.Track
	const q = `
	INSERT INTO tracks (name, artist, file_path, duration, created_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	RETURNING id, name, artist, file_path, duration, created_at;`
	if err := DB.Get(&t, q, name, artist, filePath, duration); err != nil {
		log.Error().Err(err).Msg("CreateTrack failed")
		return model.Track{}, err
	}
	return t, nil
}

func GetTrackByID(id int64) (model.Track, error) {
	var t model.Track
	const q = `SELECT id, name, artist, file_path, duration, created_at FROM tracks WHERE id = ?;`
	err := DB.Get(&t, q, id)
	if err != nil {
		log.Error().Err(err).Int64("track_id", id).Msg("GetTrackByID failed")
	}
	return t, err
}

func ListTracks() ([]model.Track, error) {
	out := []model.Track{}
	const q = `SELECT id, name, artist, file_path, duration, created_at FROM tracks ORDER BY id;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListTracks failed")
		return nil, err
	}
	return out, nil
}

func DeleteTrack(id int64) error {
	_, err := DB.Exec(`DELETE FROM tracks WHERE id = ?;`, id)
	if err != nil {
		log.Error().Err(err).Int64("track_id", id).Msg("DeleteTrack failed")
	}
	return err
}
