package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/images"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartContext(t *testing.T, build func(w *multipart.Writer)) *gin.Context {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	build(writer)
	require.NoError(t, writer.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/products", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c
}

func TestParseImageFormFieldsOnly(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		w.WriteField("imageUrls", `["https://a.com/x.jpg","https://a.com/y.jpg"]`)
		w.WriteField("existingImages", "https://a.com/keep.jpg")
	})

	input, err := parseImageForm(c)
	require.NoError(t, err)

	assert.Nil(t, input.MainFile)
	assert.Empty(t, input.GalleryFiles)
	assert.Equal(t, images.Many, input.GalleryURLs.Kind)
	assert.Equal(t, []string{"https://a.com/x.jpg", "https://a.com/y.jpg"}, input.GalleryURLs.Values)
	assert.Equal(t, images.Single, input.Existing.Kind)
	assert.False(t, input.Current.Provided())
}

func TestParseImageFormWithFiles(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		main, err := w.CreateFormFile("image", "main.jpg")
		require.NoError(t, err)
		main.Write([]byte("jpg-bytes"))

		gallery, err := w.CreateFormFile("images", "gallery-1.jpg")
		require.NoError(t, err)
		gallery.Write([]byte("jpg-bytes"))
	})

	input, err := parseImageForm(c)
	require.NoError(t, err)

	require.NotNil(t, input.MainFile)
	assert.Equal(t, "main.jpg", input.MainFile.Filename)
	require.Len(t, input.GalleryFiles, 1)
	assert.Equal(t, "gallery-1.jpg", input.GalleryFiles[0].Filename)
}

func TestParseImageFormRepeatedURLField(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		w.WriteField("imageUrls", "https://a.com/1.jpg")
		w.WriteField("imageUrls", "https://a.com/2.jpg")
	})

	input, err := parseImageForm(c)
	require.NoError(t, err)

	assert.Equal(t, images.Many, input.GalleryURLs.Kind)
	assert.Equal(t, []string{"https://a.com/1.jpg", "https://a.com/2.jpg"}, input.GalleryURLs.Values)
}

func TestImageJSONInputDecoding(t *testing.T) {
	var input imageJSONInput
	payload := `{"imageUrls":"[\"https://a.com/x.jpg\"]","existingImages":["https://a.com/keep.jpg"]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &input))

	assert.True(t, input.provided())

	in := input.normalizerInput("https://a.com/prior.jpg", nil)
	assert.Equal(t, images.Many, in.GalleryURLs.Kind)
	assert.Equal(t, []string{"https://a.com/x.jpg"}, in.GalleryURLs.Values)
	assert.Equal(t, []string{"https://a.com/keep.jpg"}, in.Existing.Values)
	assert.Equal(t, "https://a.com/prior.jpg", in.PriorMain)
}

func TestImageJSONInputAbsent(t *testing.T) {
	var input imageJSONInput
	require.NoError(t, json.Unmarshal([]byte(`{}`), &input))
	assert.False(t, input.provided())
}
