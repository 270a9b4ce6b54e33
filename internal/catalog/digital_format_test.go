package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolveDigitalFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
		kind MediaKind
	}{
		{"epub", "EPUB", MediaEbook},
		{"Azw3", "AZW3", MediaEbook},
		{"html", "HTML", MediaEbook},
		{"m4b", "M4B", MediaAudiobook},
		{"aa", "AA", MediaAudiobook},
		{"AAX", "AAX", MediaAudiobook},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ResolveDigitalFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.String())
			assert.Equal(t, tt.kind, f.Kind())
		})
	}

	_, err := ResolveDigitalFormat("DOCX")
	assert.ErrorIs(t, err, ErrInvalidDigitalFormat)

	_, err = ResolveDigitalFormat("ﬂac")
	assert.ErrorIs(t, err, ErrInvalidDigitalFormat)
}

func TestDigitalFormatRegistrySizes(t *testing.T) {
	assert.Len(t, DigitalFormats(), 23)
	assert.Len(t, DigitalFormatsOf(MediaEbook), 13)
	assert.Len(t, DigitalFormatsOf(MediaAudiobook), 10)
	assert.Equal(t, "EPUB", DigitalFormats()[0].String())
}

func TestResolveDigitalFormatAnyCase(t *testing.T) {
	labels := append(append([]string{}, ebookFormatLabels...), audiobookFormatLabels...)
	rapid.Check(t, func(t *rapid.T) {
		label := rapid.SampledFrom(labels).Draw(t, "label")
		f, err := ResolveDigitalFormat(randomCase(t, label))
		if err != nil {
			t.Fatalf("resolve %q: %v", label, err)
		}
		if f.String() != label {
			t.Fatalf("got %q, want %q", f, label)
		}
	})
}

func TestParseMediaKind(t *testing.T) {
	k, err := ParseMediaKind("AudioBook")
	require.NoError(t, err)
	assert.Equal(t, MediaAudiobook, k)

	_, err = ParseMediaKind("video")
	assert.ErrorIs(t, err, ErrInvalidDigitalFormat)
}

func TestDigitalFormatText(t *testing.T) {
	var f DigitalFormat
	require.NoError(t, f.UnmarshalText([]byte("flac")))
	assert.Equal(t, "FLAC", f.String())

	_, err := DigitalFormat{}.MarshalText()
	assert.ErrorIs(t, err, ErrInvalidDigitalFormat)
}
