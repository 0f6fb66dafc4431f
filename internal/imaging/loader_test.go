package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/ironsheep/ctseg/internal/grid"
)

// createTestImage writes a solid RGBA PNG into a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writePNG(t, "test-image.png", img)
}

// createGray16Slice builds a 16-bit slice whose left half is left and right
// half is right.
func createGray16Slice(width, height int, left, right uint16) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := left
			if x >= width/2 {
				v = right
			}
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}

func writePNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/slice.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	a := createTestImage(t, 20, 20, color.RGBA{0, 255, 0, 255})
	b := createTestImage(t, 30, 30, color.RGBA{0, 0, 255, 255})

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	cache.Evict("/nonexistent/path") // Should not panic
	cache.mu.RLock()
	_, hasA := cache.images[a]
	_, hasB := cache.images[b]
	cache.mu.RUnlock()
	if hasA || !hasB {
		t.Errorf("after Evict: hasA=%v hasB=%v, want false true", hasA, hasB)
	}

	cache.Clear()
	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()
	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := LoadGrid(cache, imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent LoadGrid error: %v", err)
	}
}

func TestLoadGrid_Gray16PNG(t *testing.T) {
	cache := NewImageCache()
	path := writePNG(t, "slice16.png", createGray16Slice(8, 4, 1000, 40000))

	g, err := LoadGrid(cache, path)
	if err != nil {
		t.Fatalf("LoadGrid failed: %v", err)
	}
	if g.Width() != 8 || g.Height() != 4 {
		t.Fatalf("dimensions: got %dx%d, want 8x4", g.Width(), g.Height())
	}
	if g.At(0, 0) != 1000 || g.At(7, 3) != 40000 {
		t.Errorf("samples: got %g and %g, want 1000 and 40000", g.At(0, 0), g.At(7, 3))
	}
}

func TestLoadGrid_Gray16TIFF(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "slice16.tif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := tiff.Encode(f, createGray16Slice(6, 6, 120, 3100), nil); err != nil {
		t.Fatalf("failed to encode tiff: %v", err)
	}
	f.Close()

	g, err := LoadGrid(cache, path)
	if err != nil {
		t.Fatalf("LoadGrid failed: %v", err)
	}
	lo, hi := g.Range()
	if lo != 120 || hi != 3100 {
		t.Errorf("range: got [%g,%g], want [120,3100]", lo, hi)
	}
}

func TestLoadGrid_Gray8(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	img.SetGray(2, 3, color.Gray{Y: 77})
	cache := NewImageCache()

	g, err := LoadGrid(cache, writePNG(t, "slice8.png", img))
	if err != nil {
		t.Fatalf("LoadGrid failed: %v", err)
	}
	if g.At(2, 3) != 77 || g.At(0, 0) != 0 {
		t.Errorf("samples: got %g and %g, want 77 and 0", g.At(2, 3), g.At(0, 0))
	}
}

func TestGridFromImage_ColorUsesLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.RGBA{255, 255, 255, 255})
		img.Set(x, 1, color.RGBA{0, 0, 0, 255})
	}

	g, err := GridFromImage(img)
	if err != nil {
		t.Fatalf("GridFromImage failed: %v", err)
	}
	if v := g.At(1, 0); v < 254 {
		t.Errorf("white luminance: got %g, want >= 254", v)
	}
	if v := g.At(1, 1); v != 0 {
		t.Errorf("black luminance: got %g, want 0", v)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	path := writePNG(t, "slice.png", createGray16Slice(20, 10, 5, 900))

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 20 || info.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.ColorDepth != "16-bit" || !info.Grayscale {
		t.Errorf("depth/grayscale: got %s/%v, want 16-bit/true", info.ColorDepth, info.Grayscale)
	}
	if info.MinValue != 5 || info.MaxValue != 900 {
		t.Errorf("range: got [%g,%g], want [5,900]", info.MinValue, info.MaxValue)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".JPEG", "jpeg"},
		{".gif", "gif"},
		{".tiff", "tiff"},
		{".bmp", "bmp"},
		{".xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// A valid PNG regardless of extension; decoding sniffs content.
			path := writePNG(t, "test-format"+tt.ext, image.NewRGBA(image.Rect(0, 0, 10, 10)))

			info, err := LoadImageInfo(NewImageCache(), path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
		})
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	if _, err := LoadImageInfo(NewImageCache(), "/nonexistent/image.png"); err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 300, 200, color.RGBA{100, 100, 100, 255})

	dims, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 300 || dims.Height != 200 {
		t.Errorf("dimensions: got %dx%d, want 300x200", dims.Width, dims.Height)
	}

	if _, err := GetDimensions(cache, "/nonexistent/image.png"); err == nil {
		t.Error("GetDimensions should fail for non-existent file")
	}
}

func TestLoadMask_RoundTrip(t *testing.T) {
	m := grid.NewMask(6, 4)
	m.Set(1, 1, true)
	m.Set(4, 2, true)
	path := writePNG(t, "mask.png", MaskImage(m, 255))

	got, err := LoadMask(NewImageCache(), path)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}
	if !got.Equal(m) {
		t.Errorf("mask mismatch: got %v, want %v", got.Points(), m.Points())
	}
}
