package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/images"
)

// imageFormInput is the raw image payload pulled off a multipart form. The
// same field names are shared by the services, projects and products write
// paths; the normalizer turns them into the canonical image set.
type imageFormInput struct {
	MainFile     *multipart.FileHeader
	GalleryFiles []*multipart.FileHeader
	MainURL      images.Field
	Current      images.Field
	GalleryURLs  images.Field
	Existing     images.Field
}

func parseImageForm(c *gin.Context) (imageFormInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return imageFormInput{}, err
	}

	input := imageFormInput{
		MainURL:     images.DecodeField(c.PostFormArray("imageUrl")),
		GalleryURLs: images.DecodeField(c.PostFormArray("imageUrls")),
		Existing:    images.DecodeField(c.PostFormArray("existingImages")),
		Current:     images.DecodeField(c.PostFormArray("image")),
	}

	file, err := c.FormFile("image")
	if err == nil {
		input.MainFile = file
	} else if !errors.Is(err, http.ErrMissingFile) &&
		!strings.Contains(err.Error(), "no such file") {
		return imageFormInput{}, err
	}

	if form := c.Request.MultipartForm; form != nil {
		input.GalleryFiles = form.File["images"]
	}

	return input, nil
}

func (in imageFormInput) normalizerInput(priorMain string, priorGallery []string) images.Input {
	return images.Input{
		MainFile:     in.MainFile,
		GalleryFiles: in.GalleryFiles,
		MainURL:      in.MainURL,
		Current:      in.Current,
		GalleryURLs:  in.GalleryURLs,
		Existing:     in.Existing,
		PriorMain:    priorMain,
		PriorGallery: priorGallery,
	}
}

// imageJSONInput is the JSON-body counterpart used by update handlers: the
// fields may each be a string, an array, or JSON-encoded text.
type imageJSONInput struct {
	Image          json.RawMessage `json:"image"`
	ImageURL       json.RawMessage `json:"imageUrl"`
	ImageURLs      json.RawMessage `json:"imageUrls"`
	ExistingImages json.RawMessage `json:"existingImages"`
}

func (in imageJSONInput) normalizerInput(priorMain string, priorGallery []string) images.Input {
	return images.Input{
		MainURL:      images.DecodeJSONField(in.ImageURL),
		Current:      images.DecodeJSONField(in.Image),
		GalleryURLs:  images.DecodeJSONField(in.ImageURLs),
		Existing:     images.DecodeJSONField(in.ExistingImages),
		PriorMain:    priorMain,
		PriorGallery: priorGallery,
	}
}

func (in imageJSONInput) provided() bool {
	return len(in.Image) > 0 || len(in.ImageURL) > 0 ||
		len(in.ImageURLs) > 0 || len(in.ExistingImages) > 0
}
