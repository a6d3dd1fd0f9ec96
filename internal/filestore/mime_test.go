package filestore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectMimeType_SniffsSupportedClasses(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	mimeType, err := DetectMimeType(png)
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)

	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	mimeType, err = DetectMimeType(gif)
	require.NoError(t, err)
	require.Equal(t, "image/gif", mimeType)
}

func TestDetectMimeType_RejectsOtherClasses(t *testing.T) {
	_, err := DetectMimeType([]byte("just some text"))
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = DetectMimeType(nil)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestParseMimeType_DeclaredTypes(t *testing.T) {
	mimeType, err := ParseMimeType("image/png")
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)

	mimeType, err = ParseMimeType("audio/mpeg")
	require.NoError(t, err)
	require.Equal(t, "audio/mpeg", mimeType)

	_, err = ParseMimeType("application/pdf")
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = ParseMimeType("")
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = ParseMimeType("not a type")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestFilename_DerivesFromOwnerAndType(t *testing.T) {
	require.Equal(t, "P_7.png", Filename("P", 7, "image/png"))
	require.Equal(t, "C_12.gif", Filename("C", 12, "image/gif"))
}
