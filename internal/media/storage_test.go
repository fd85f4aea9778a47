package media

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStorage() *Storage {
	return NewStorageFs(afero.NewMemMapFs(), "/media")
}

func TestSaveAndRead(t *testing.T) {
	s := newMemStorage()

	rel, err := s.Save(NewsImages, "My Photo.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "news_images/My_Photo.jpg", rel)

	data, err := s.ReadAll(rel)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
	assert.Equal(t, "/media/news_images/My_Photo.jpg", s.URL(rel))
}

func TestSaveNeverOverwrites(t *testing.T) {
	s := newMemStorage()

	first, err := s.Save(BannerImages, "ad.jpg", []byte("one"))
	require.NoError(t, err)
	second, err := s.Save(BannerImages, "ad.jpg", []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^banner_images/ad_[0-9a-f]{8}\.jpg$`, second)

	data, _ := s.ReadAll(first)
	assert.Equal(t, []byte("one"), data)
}

func TestSaveStripsDirectories(t *testing.T) {
	s := newMemStorage()

	rel, err := s.Save(StorySlides, "../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "webstories/slides/passwd", rel)

	_, err = s.Save(StorySlides, "..", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSaveNonASCIINameKeepsExtension(t *testing.T) {
	s := newMemStorage()

	rel, err := s.Save(NewsImages, "新闻.jpg", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "news_images/upload.jpg", rel)

	rel, err = s.Save(NewsImages, "новости", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "news_images/upload", rel)

	rel, err = s.Save(NewsImages, "..hidden.png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "news_images/hidden.png", rel)
}

func TestOpenRejectsTraversal(t *testing.T) {
	s := newMemStorage()

	_, err := s.Open("../secret")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = s.Open("/abs")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := newMemStorage()
	assert.NoError(t, s.Delete("news_images/none.jpg"))

	rel, err := s.Save(NewsImages, "a.jpg", []byte("a"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(rel))

	exists, _ := afero.Exists(s.Fs(), rel)
	assert.False(t, exists)
}

func TestURLEmpty(t *testing.T) {
	assert.Equal(t, "", newMemStorage().URL(""))
}
