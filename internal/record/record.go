package record

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MediaKind distinguishes still images from video clips in a record's media list.
type MediaKind string

const (
	// MediaPhoto is a still image.
	MediaPhoto MediaKind = "photo"
	// MediaVideo is a video clip.
	MediaVideo MediaKind = "video"
)

// Media is a single entry of a record's media carousel.
type Media struct {
	URL  string    `json:"url" yaml:"url" validate:"required"`
	Kind MediaKind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=photo video"`
}

// Record is one swipeable card.
//
// Only ID is meaningful to the deck; the rest is display payload.
type Record struct {
	ID       string  `json:"id" yaml:"id" validate:"required"`
	Name     string  `json:"name" yaml:"name"`
	Age      int     `json:"age,omitempty" yaml:"age,omitempty" validate:"gte=0,lte=150"`
	Zodiac   string  `json:"zodiac,omitempty" yaml:"zodiac,omitempty"`
	Location string  `json:"location,omitempty" yaml:"location,omitempty"`
	Height   int     `json:"height,omitempty" yaml:"height,omitempty" validate:"gte=0,lte=300"`
	Media    []Media `json:"media,omitempty" yaml:"media,omitempty" validate:"dive"`
}

// NormalizeID trims surrounding whitespace and applies Unicode NFC.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// Normalized returns a copy of r with a normalised ID and its own media slice.
func (r Record) Normalized() Record {
	out := r
	out.ID = NormalizeID(r.ID)
	if r.Media != nil {
		out.Media = make([]Media, len(r.Media))
		copy(out.Media, r.Media)
		for i := range out.Media {
			if out.Media[i].Kind == "" {
				out.Media[i].Kind = MediaPhoto
			}
		}
	}
	return out
}

// PrimaryMedia returns the first media entry, if any.
func (r Record) PrimaryMedia() (Media, bool) {
	if len(r.Media) == 0 {
		return Media{}, false
	}
	return r.Media[0], true
}

// IDs returns the ids of records in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// Clone returns a shallow copy of the slice. Records themselves are values
// and are never mutated after construction, so sharing them is safe.
func Clone(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
