package ports

import "context"

// ImageBuilder defines the image-store side of the container tool: building,
// tagging, pushing, and checking local presence of images.
type ImageBuilder interface {
	// BuildImage builds ref from the Dockerfile at dockerfile within
	// contextDir, passing buildArgs through to the tool.
	BuildImage(ctx context.Context, contextDir, dockerfile, ref string, buildArgs map[string]string) error
	// ImageExists reports whether ref is present in the local image store.
	ImageExists(ctx context.Context, ref string) (bool, error)
	// TagImage applies target as an additional reference for source.
	TagImage(ctx context.Context, source, target string) error
	// PushImage publishes ref to its registry. The client is assumed to be
	// pre-authenticated; auth material is passed through, never acquired.
	PushImage(ctx context.Context, ref string) error
}
