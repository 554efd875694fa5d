package imaging

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// FrameCache provides thread-safe caching of decoded camera frames to avoid
// redundant disk reads.
//
// Frames are keyed by the path they were loaded from. Once a frame is loaded,
// subsequent Load calls for the same path return the cached copy without
// disk I/O. Camera frames written by a capture process are usually replaced
// under a new path, so stale entries only cost memory; use Evict or Clear to
// release them.
//
// FrameCache is safe for concurrent use by multiple goroutines. The detection
// worker reads frames while the session goroutine may evict them.
//
// # Example Usage
//
//	cache := imaging.NewFrameCache()
//	img, err := cache.Load("/path/to/frame.jpg")
//	if err != nil {
//	    return err
//	}
//	defer cache.Evict("/path/to/frame.jpg")
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]image.Image
}

// NewFrameCache creates and initializes a new empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]image.Image),
	}
}

// Load retrieves a frame from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the frame. Supported formats
//     are PNG, JPEG, GIF, TIFF and BMP.
//
// Returns:
//   - image.Image: The decoded frame. JPEG frames are rotated according to
//     their EXIF orientation tag, so the result is upright as the camera saw it.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The frame is cached using the exact path string provided. Different paths
// to the same file result in separate cache entries.
func (c *FrameCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	c.mu.Lock()
	c.frames[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
// After eviction, the next Load() call for this path will read from disk.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// FrameInfo contains metadata about a loaded frame file.
type FrameInfo struct {
	// Width is the upright frame width in pixels.
	Width int `json:"width"`

	// Height is the upright frame height in pixels.
	Height int `json:"height"`

	// AspectRatio is Width / Height, the value a camera for this frame uses.
	AspectRatio float64 `json:"aspect_ratio"`

	// Format is the detected format: "png", "jpeg", "gif", "tiff", "bmp" or
	// "unknown". Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// FileSizeBytes is the size of the frame file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame and returns its metadata.
//
// The frame is loaded into the cache if not already cached.
//
// # Format Detection
//
// The format is determined by file extension using the same table the
// decoder uses; unrecognized extensions report "unknown".
func LoadFrameInfo(cache *FrameCache, path string) (*FrameInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	bounds := img.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		AspectRatio:   float64(bounds.Dx()) / float64(bounds.Dy()),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
