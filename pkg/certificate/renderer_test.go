package certificate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWrapTitleShort(t *testing.T) {
	lines := WrapTitle("Algebra I")
	require.Equal(t, []string{"Algebra I"}, lines)
}

func TestWrapTitleLongProducesMultipleLines(t *testing.T) {
	lines := WrapTitle("Introduction to Distributed Systems and Consensus Protocols")
	require.Greater(t, len(lines), 1)
	for _, line := range lines[:len(lines)-1] {
		require.GreaterOrEqual(t, len(line), titleWrapLimit)
	}
}

func TestWrapTitleFlushBoundary(t *testing.T) {
	// 30 characters exactly triggers a flush
	lines := WrapTitle("abcdefghij abcdefghij abcdefgh next")
	require.Equal(t, "abcdefghij abcdefghij abcdefgh", lines[0])
	require.Equal(t, "next", lines[1])
}

func TestWrapTitleEmpty(t *testing.T) {
	require.Empty(t, WrapTitle(""))
}

func TestRenderWritesJPEG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cert.jpg")
	renderer := NewRenderer("")

	err := renderer.Render("Ada Lovelace", "Analytical Engines: A Complete Introduction", time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// JPEG SOI marker
	require.Equal(t, []byte{0xff, 0xd8}, data[:2])
}

func TestRenderMissingTemplateFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cert.jpg")
	renderer := NewRenderer(filepath.Join(t.TempDir(), "nope.png"))

	err := renderer.Render("Ada Lovelace", "Course", time.Now(), out)
	require.Error(t, err)
}
