package audio

import (
	"os"

	"github.com/dhowden/tag"
)

// Meta carries best-effort container tags used to name stored clips.
type Meta struct {
	Title  string
	Artist string
	Album  string
}

// ReadTags pulls whatever tags the container carries. Untagged or
// unsupported files, plain WAV usually, come back empty; callers fall back
// to the file name.
func ReadTags(path string) Meta {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Meta{}
	}
	return Meta{Title: m.Title(), Artist: m.Artist(), Album: m.Album()}
}
