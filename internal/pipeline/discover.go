package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/tripmaster/internal/photos"
)

// Card subdirectories.
const (
	MovieDir = "Movie"
	EMRDir   = "EMR"
	PhotoDir = "Photo"
)

// Card is the content found on a dash cam SD card.
type Card struct {
	Root    string
	Movie   []string
	EMR     []string
	Photos  []string
	Missing []string // Subdirectories that do not exist.
}

// Batch is a list of clips segmented together.
type Batch struct {
	Name  string
	Clips []string
}

// IsClip reports whether name is a primary recording. Names containing "_s"
// are the camera's low-resolution companion streams.
func IsClip(name string) bool {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext != ".mp4" && ext != ".MP4" {
		return false
	}
	return !strings.Contains(base, "_s")
}

// DiscoverCard lists Movie/, EMR/ and Photo/ under root. A missing root is
// an error; missing subdirectories are reported in Card.Missing.
func DiscoverCard(root string) (*Card, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("card root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("card root %s is not a directory", root)
	}

	card := &Card{Root: root}
	lists := []struct {
		dir  string
		keep func(string) bool
		dst  *[]string
	}{
		{MovieDir, IsClip, &card.Movie},
		{EMRDir, IsClip, &card.EMR},
		{PhotoDir, photos.IsPhoto, &card.Photos},
	}
	for _, l := range lists {
		files, err := listDir(filepath.Join(root, l.dir), l.keep)
		if errors.Is(err, fs.ErrNotExist) {
			card.Missing = append(card.Missing, l.dir)
			continue
		}
		if err != nil {
			return nil, err
		}
		*l.dst = files
	}
	return card, nil
}

// Batches returns the clip lists to segment. With combine set, Movie and
// EMR clips form one batch ordered by base name.
func (c *Card) Batches(combine bool) []Batch {
	if combine {
		all := make([]string, 0, len(c.Movie)+len(c.EMR))
		all = append(all, c.Movie...)
		all = append(all, c.EMR...)
		sort.SliceStable(all, func(i, j int) bool {
			return filepath.Base(all[i]) < filepath.Base(all[j])
		})
		return []Batch{{Name: MovieDir + "+" + EMRDir, Clips: all}}
	}
	var out []Batch
	if len(c.Movie) > 0 {
		out = append(out, Batch{Name: MovieDir, Clips: c.Movie})
	}
	if len(c.EMR) > 0 {
		out = append(out, Batch{Name: EMRDir, Clips: c.EMR})
	}
	return out
}

// listDir returns the regular files in dir accepted by keep, sorted. It does
// not recurse.
func listDir(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
