// internal/catalog/digital_format.go
package catalog

import (
	"fmt"
	"strings"
)

// MediaKind tells which kind of digital media a file format carries.
type MediaKind string

const (
	MediaEbook     MediaKind = "ebook"
	MediaAudiobook MediaKind = "audiobook"
)

// ParseMediaKind resolves a media kind case-insensitively.
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(s)) {
	case MediaEbook:
		return MediaEbook, nil
	case MediaAudiobook:
		return MediaAudiobook, nil
	}
	return "", fmt.Errorf("%w: unknown media kind %q", ErrInvalidDigitalFormat, s)
}

// DigitalFormat is a file format label from the closed e-book and audiobook
// registries. The zero value is not a valid format.
type DigitalFormat struct {
	label string
	kind  MediaKind
}

var ebookFormatLabels = []string{
	"EPUB",
	"PDF",
	"MOBI",
	"AZW",
	"AZW3",
	"KFX",
	"IBA",
	"FB2",
	"LIT",
	"PRC",
	"TXT",
	"RTF",
	"HTML",
}

var audiobookFormatLabels = []string{
	"MP3",
	"AAC",
	"M4A",
	"M4B",
	"WMA",
	"OGG",
	"FLAC",
	"WAV",
	"AA",
	"AAX",
}

var digitalFormats = newRegistry(
	append(append([]string{}, ebookFormatLabels...), audiobookFormatLabels...),
	func(label string) DigitalFormat {
		kind := MediaEbook
		for _, a := range audiobookFormatLabels {
			if a == label {
				kind = MediaAudiobook
				break
			}
		}
		return DigitalFormat{label: label, kind: kind}
	},
)

// ResolveDigitalFormat returns the canonical digital format whose label
// matches candidate case-insensitively.
func ResolveDigitalFormat(candidate string) (DigitalFormat, error) {
	f, ok := digitalFormats.lookup(candidate)
	if !ok {
		return DigitalFormat{}, fmt.Errorf("%w %q", ErrInvalidDigitalFormat, candidate)
	}
	return f, nil
}

// DigitalFormats returns every registered format, e-book formats first.
func DigitalFormats() []DigitalFormat {
	return digitalFormats.all()
}

// DigitalFormatsOf returns the registered formats of one media kind.
func DigitalFormatsOf(kind MediaKind) []DigitalFormat {
	var out []DigitalFormat
	for _, f := range digitalFormats.order {
		if f.kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func (f DigitalFormat) String() string { return f.label }

func (f DigitalFormat) Kind() MediaKind { return f.kind }

func (f DigitalFormat) IsZero() bool { return f.label == "" }

func (f DigitalFormat) MarshalText() ([]byte, error) {
	if f.IsZero() {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDigitalFormat)
	}
	return []byte(f.label), nil
}

func (f *DigitalFormat) UnmarshalText(text []byte) error {
	resolved, err := ResolveDigitalFormat(string(text))
	if err != nil {
		return err
	}
	*f = resolved
	return nil
}
