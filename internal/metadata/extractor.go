// Package metadata pulls tag information and playing time out of uploaded
// audio so the operator form can leave name/artist blank.
package metadata

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"
	"github.com/tcolgate/mp3"
)

// Info is what could be recovered from the file. Zero values mean the file
// carried no usable tag or the duration could not be computed.
type Info struct {
	Title    string
	Artist   string
	Duration int // seconds
}

// Extract reads tags and, for mp3 payloads, the total duration. It never
// fails the upload: unreadable tags or frames degrade to zero values.
func Extract(r io.ReadSeeker, filename string) Info {
	var info Info

	if m, err := tag.ReadFrom(r); err == nil {
		info.Title = strings.TrimSpace(m.Title())
		info.Artist = strings.TrimSpace(m.Artist())
	} else {
		log.Debug().Err(err).Str("file", filename).Msg("no readable audio tag")
	}

	if strings.ToLower(filepath.Ext(filename)) == ".mp3" {
		if _, err := r.Seek(0, io.SeekStart); err == nil {
			info.Duration = mp3Duration(r, filename)
		}
	}

	// leave the reader at the start for whoever stores the bytes next
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("failed to rewind upload after metadata scan")
	}
	return info
}

func mp3Duration(r io.Reader, filename string) int {
	dec := mp3.NewDecoder(r)
	var total time.Duration
	var skipped int
	frames := 0
	for {
		var fr mp3.Frame
		if err := dec.Decode(&fr, &skipped); err != nil {
			if !errors.Is(err, io.EOF) && frames == 0 {
				log.Debug().Err(err).Str("file", filename).Msg("could not decode any mp3 frame")
				return 0
			}
			break
		}
		total += fr.Duration()
		frames++
	}
	return int(total.Seconds() + 0.5)
}
