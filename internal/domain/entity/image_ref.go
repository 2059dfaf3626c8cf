package entity

import "errors"

type ImageKind string

const (
	ImageURL  ImageKind = "url"
	ImageBlob ImageKind = "blob"
)

var ErrInvalidImageRef = errors.New("invalid image reference")

// ImageRef points at an entity's picture either by external URL or by the
// digest of a stored blob. Exactly one of URL or Digest is set.
type ImageRef struct {
	Kind        ImageKind `json:"kind"`
	URL         string    `json:"url,omitempty"`
	Digest      string    `json:"digest,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
}

func ExternalImage(url string) ImageRef {
	return ImageRef{Kind: ImageURL, URL: url}
}

func BlobImage(digest, contentType string) ImageRef {
	return ImageRef{Kind: ImageBlob, Digest: digest, ContentType: contentType}
}

func (r ImageRef) Validate() error {
	switch r.Kind {
	case ImageURL:
		if r.URL == "" || r.Digest != "" {
			return ErrInvalidImageRef
		}
	case ImageBlob:
		if r.Digest == "" || r.URL != "" {
			return ErrInvalidImageRef
		}
	default:
		return ErrInvalidImageRef
	}
	return nil
}
