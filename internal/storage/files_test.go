package storage

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real *multipart.FileHeader by round-tripping a
// multipart body, so validation sees exactly what gin hands to handlers.
func fileHeader(t *testing.T, filename, contentType string, size int) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)

	_, err = part.Write(bytes.Repeat([]byte("x"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(64 * MB)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)

	return files[0]
}

func TestTypeAllowed(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		assert.True(t, TypeAllowed("application/pdf", []string{"application/pdf"}))
		assert.False(t, TypeAllowed("application/zip", []string{"application/pdf"}))
	})

	t.Run("family prefix match", func(t *testing.T) {
		assert.True(t, TypeAllowed("image/png", []string{"image"}))
		assert.True(t, TypeAllowed("image/jpeg", []string{"image"}))
		assert.False(t, TypeAllowed("video/mp4", []string{"image"}))
		// "image" as a bare type is not a family member of itself.
		assert.False(t, TypeAllowed("imagery/png", []string{"image"}))
	})

	t.Run("parameters and case are ignored", func(t *testing.T) {
		assert.True(t, TypeAllowed("Image/PNG", []string{"image"}))
		assert.True(t, TypeAllowed("application/pdf; charset=binary", []string{"application/pdf"}))
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts a pdf document", func(t *testing.T) {
		header := fileHeader(t, "passport.pdf", "application/pdf", 1024)
		assert.Empty(t, Validate(header, PurposeDocuments))
	})

	t.Run("rejects a disallowed type", func(t *testing.T) {
		header := fileHeader(t, "movie.mp4", "video/mp4", 1024)

		violations := Validate(header, PurposeDocuments)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0], "not allowed")
	})

	t.Run("rejects an oversized logo", func(t *testing.T) {
		header := fileHeader(t, "logo.png", "image/png", 3*MB)

		violations := Validate(header, PurposeLogos)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0], "size limit")
	})

	t.Run("same size passes a looser purpose", func(t *testing.T) {
		header := fileHeader(t, "photo.png", "image/png", 3*MB)
		assert.Empty(t, Validate(header, PurposeImages))
	})

	t.Run("reports both violations at once", func(t *testing.T) {
		header := fileHeader(t, "movie.mp4", "video/mp4", 6*MB)
		assert.Len(t, Validate(header, PurposeImages), 2)
	})

	t.Run("unknown purpose", func(t *testing.T) {
		header := fileHeader(t, "a.pdf", "application/pdf", 10)
		assert.Len(t, Validate(header, Purpose("bogus")), 1)
	})
}

func TestStoreSaveAndDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	header := fileHeader(t, "passport.pdf", "application/pdf", 512)

	relPath, err := store.Save(header, PurposeDocuments)
	require.NoError(t, err)

	// Stored under the purpose directory with a generated name, never the
	// client-supplied one.
	assert.Equal(t, string(PurposeDocuments), filepath.Dir(relPath))
	assert.NotContains(t, relPath, "passport")
	assert.True(t, strings.HasSuffix(relPath, ".pdf"))

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), relPath))
	require.NoError(t, err)
	assert.Len(t, data, 512)

	require.NoError(t, store.Delete(relPath))
	assert.ErrorIs(t, store.Delete(relPath), ErrNotFound)
}

func TestStoreSaveRejectsInvalid(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	header := fileHeader(t, "movie.mp4", "video/mp4", 512)

	_, err = store.Save(header, PurposeDocuments)
	assert.Error(t, err)
}

func TestStoreDeleteEmptyPath(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(""), ErrNotFound)
}
