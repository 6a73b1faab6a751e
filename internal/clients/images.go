package clients

import "strings"

const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

type PosterSize string

const (
	PosterW200     PosterSize = "w200"
	PosterW300     PosterSize = "w300"
	PosterW400     PosterSize = "w400"
	PosterW500     PosterSize = "w500"
	PosterW780     PosterSize = "w780"
	PosterOriginal PosterSize = "original"
)

type BackdropSize string

const (
	BackdropW300     BackdropSize = "w300"
	BackdropW780     BackdropSize = "w780"
	BackdropW1280    BackdropSize = "w1280"
	BackdropOriginal BackdropSize = "original"
)

const (
	PosterPlaceholder   = "/placeholder.svg?height=750&width=500"
	BackdropPlaceholder = "/placeholder.svg?height=720&width=1280"
)

// Images builds artwork URLs against an image CDN base.
type Images struct {
	BaseURL string
}

func NewImages(baseURL string) Images {
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	return Images{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ImageURL returns the poster (or profile) URL for path. Unknown sizes fall
// back to w500; an empty path yields the poster placeholder.
func (i Images) ImageURL(path string, size PosterSize) string {
	if path == "" {
		return PosterPlaceholder
	}
	switch size {
	case PosterW200, PosterW300, PosterW400, PosterW500, PosterW780, PosterOriginal:
	default:
		size = PosterW500
	}
	return i.BaseURL + "/" + string(size) + path
}

// BackdropURL is ImageURL for backdrops, defaulting to w1280.
func (i Images) BackdropURL(path string, size BackdropSize) string {
	if path == "" {
		return BackdropPlaceholder
	}
	switch size {
	case BackdropW300, BackdropW780, BackdropW1280, BackdropOriginal:
	default:
		size = BackdropW1280
	}
	return i.BaseURL + "/" + string(size) + path
}

func ImageURL(path string, size PosterSize) string {
	return NewImages("").ImageURL(path, size)
}

func BackdropURL(path string, size BackdropSize) string {
	return NewImages("").BackdropURL(path, size)
}

// Deref returns the pointed-to path or "".
func Deref(path *string) string {
	if path == nil {
		return ""
	}
	return *path
}
