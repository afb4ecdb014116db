// Package library builds the playlist from a directory of audio files.
package library

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/padbox/internal/app/filter"
	"github.com/osa030/padbox/internal/domain/playlist"
	"github.com/osa030/padbox/internal/domain/track"
)

// Options controls a directory scan.
type Options struct {
	Dir      string // Directory to enumerate (not recursive)
	Sort     bool   // Sort by file name instead of keeping enumeration order
	ReadTags bool   // Read title/artist/album tags
}

// Scan enumerates opts.Dir once and returns the tracks accepted by chain,
// in directory enumeration order unless opts.Sort is set.
func Scan(ctx context.Context, opts Options, chain *filter.Chain) (*playlist.Playlist, error) {
	dir, err := os.Open(opts.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open playlist directory %s", opts.Dir)
	}
	defer dir.Close()

	// ReadDir on the handle keeps enumeration order; os.ReadDir would sort.
	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read playlist directory %s", opts.Dir)
	}

	tracks := make([]track.Track, 0, len(entries))
	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(opts.Dir, de.Name())
		info, err := os.Stat(path)
		if err != nil {
			zlog.Warn().Msgf("library: skipping unreadable entry: path=%s err=%v", path, err)
			continue
		}

		entry := filter.Entry{
			Path: path,
			Name: de.Name(),
			Mode: info.Mode(),
		}
		if result := chain.Execute(ctx, entry); !result.Accepted {
			zlog.Debug().Msgf("library: skipping entry: path=%s code=%s", path, result.Code)
			continue
		}

		t := track.New(path)
		if opts.ReadTags && info.Mode().IsRegular() {
			readTags(&t)
		}
		tracks = append(tracks, t)
	}

	if opts.Sort {
		sort.SliceStable(tracks, func(i, j int) bool {
			return strings.ToLower(tracks[i].FileName) < strings.ToLower(tracks[j].FileName)
		})
	}

	zlog.Info().Msgf("library: scanned %s: tracks=%d entries=%d", opts.Dir, len(tracks), len(entries))
	return playlist.New(opts.Dir, tracks), nil
}

// readTags fills tag metadata. Files without tags keep their file name only.
func readTags(t *track.Track) {
	f, err := os.Open(t.Path)
	if err != nil {
		zlog.Debug().Msgf("library: failed to open for tags: path=%s err=%v", t.Path, err)
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			zlog.Debug().Msgf("library: failed to read tags: path=%s err=%v", t.Path, err)
		}
		return
	}

	t.Title = strings.TrimSpace(m.Title())
	t.Artist = strings.TrimSpace(m.Artist())
	t.Album = strings.TrimSpace(m.Album())
}
