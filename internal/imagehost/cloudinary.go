package imagehost

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Profile photos are scaled to a fixed width on upload.
const photoTransformation = "c_scale,w_150"

// Photo is the handle pair returned by the image host.
type Photo struct {
	ID  string
	URL string
}

// Uploader abstracts the hosted image store.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader) (Photo, error)
	Destroy(ctx context.Context, publicID string) error
}

// Cloudinary implements Uploader against the Cloudinary upload API.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds a Cloudinary uploader from a CLOUDINARY_URL style
// connection string. Uploads land in the given folder.
func NewCloudinary(cloudinaryURL, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Upload stores the file and returns its public handle and URL.
func (c *Cloudinary) Upload(ctx context.Context, file io.Reader) (Photo, error) {
	res, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         c.folder,
		Transformation: photoTransformation,
	})
	if err != nil {
		return Photo{}, fmt.Errorf("upload image: %w", err)
	}
	return Photo{ID: res.PublicID, URL: res.SecureURL}, nil
}

// Destroy removes a hosted image by its public handle.
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("destroy image %s: %w", publicID, err)
	}
	return nil
}
