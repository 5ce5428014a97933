package assets

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	cldupload "github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"backend/internal/config"
)

const maxImageSize = 5 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

var errDisabled = errors.New("asset gateway is not configured")

// Gateway uploads images to Cloudinary. When credentials are missing the
// gateway stays disabled: callers skip uploads instead of failing the
// parent request.
type Gateway struct {
	cld *cloudinary.Cloudinary
	log *zap.Logger
}

func New(cfg config.CloudinaryConfig, log *zap.Logger) (*Gateway, error) {
	if !cfg.Configured() {
		log.Warn("cloudinary credentials missing, image uploads disabled")
		return &Gateway{log: log}, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}

	return &Gateway{cld: cld, log: log}, nil
}

func (g *Gateway) Enabled() bool {
	return g != nil && g.cld != nil
}

// Upload pushes one file and returns its durable public URL.
func (g *Gateway) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if !g.Enabled() {
		return "", errDisabled
	}

	if err := validateFile(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	resp, err := g.cld.Upload.Upload(ctx, src, cldupload.UploadParams{
		Folder: "site",
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("upload returned no URL")
	}

	g.log.Info("asset uploaded",
		zap.String("filename", file.Filename),
		zap.String("publicId", resp.PublicID))

	return resp.SecureURL, nil
}

func validateFile(file *multipart.FileHeader) error {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return fmt.Errorf("image file extension is required")
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return fmt.Errorf("unsupported image type: %s", extension)
	}
	if file.Size > maxImageSize {
		return fmt.Errorf("image file too large (max 5MB)")
	}
	return nil
}
