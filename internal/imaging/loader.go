package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // Register TIFF decoder for 16-bit slice exports

	"github.com/ironsheep/ctseg/internal/grid"
)

// ImageCache provides thread-safe caching of decoded slices to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once a slice
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// A server segmenting many slices should evict slices it no longer needs.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	g, err := imaging.LoadGrid(cache, "/path/to/slice.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/slice.png") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// Parameters:
//   - path: File path to the slice. Supported formats are PNG, JPEG, GIF,
//     TIFF and BMP.
//
// Returns:
//   - image.Image: The decoded image with its native color model, e.g.
//     *image.Gray16 for 16-bit grayscale PNG or TIFF.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// LoadGrid loads a slice through the cache and converts it to an integer grid.
func LoadGrid(cache *ImageCache, path string) (*grid.Grid, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	g, err := GridFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}
	return g, nil
}

// GridFromImage converts an image into an integer grid of intensities.
//
// Grayscale images keep their stored values: 0-65535 for *image.Gray16 and
// 0-255 for *image.Gray. Any other color model is reduced to 8-bit
// luminance first.
func GridFromImage(img image.Image) (*grid.Grid, error) {
	b := img.Bounds()
	g, err := grid.New(b.Dx(), b.Dy(), grid.KindInteger)
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				g.Set(x, y, float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	case *image.Gray:
		fillFromGray(g, src)
	default:
		fillFromGray(g, effect.Grayscale(img))
	}
	return g, nil
}

func fillFromGray(g *grid.Grid, src *image.Gray) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g.Set(x, y, float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
		}
	}
}

// ImageInfo contains metadata about a slice file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected format: "png", "jpeg", "gif", "tiff", "bmp" or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// Grayscale reports whether the stored values are used as-is by LoadGrid.
	Grayscale bool `json:"grayscale"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// MinValue and MaxValue are the intensity range LoadGrid would produce.
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads a slice and returns metadata about it, including the
// intensity range of its grid, which helps choose thresholds.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	g, err := GridFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}
	lo, hi := g.Range()

	hasAlpha := false
	grayscale := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		grayscale = true
		colorDepth = "16-bit"
	case *image.Gray:
		grayscale = true
	}

	return &ImageInfo{
		Width:         g.Width(),
		Height:        g.Height(),
		Format:        formatFromExt(path),
		ColorDepth:    colorDepth,
		Grayscale:     grayscale,
		HasAlpha:      hasAlpha,
		MinValue:      lo,
		MaxValue:      hi,
		FileSizeBytes: stat.Size(),
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	}
	return "unknown"
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of a slice without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// LoadMask loads a mask image written by MaskImage (or any image whose
// region pixels are non-zero) through the cache.
func LoadMask(cache *ImageCache, path string) (*grid.Mask, error) {
	g, err := LoadGrid(cache, path)
	if err != nil {
		return nil, err
	}
	m := grid.NewMask(g.Width(), g.Height())
	for i := 0; i < g.Len(); i++ {
		m.SetIndex(i, g.AtIndex(i) > 0)
	}
	return m, nil
}
