// Package config loads the server's tuning parameters from a JSON file.
//
// Every field is optional. Omitted fields fall back to the defaults returned
// by the Get* methods, so an empty file (or no file at all) is a valid
// configuration.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/planar-rect-mcp/internal/detection"
	"github.com/ironsheep/planar-rect-mcp/internal/hittest"
	"github.com/ironsheep/planar-rect-mcp/internal/overlay"
	"github.com/ironsheep/planar-rect-mcp/internal/reconstruct"
)

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 * 1024 * 1024

// Config is the root configuration. The JSON schema is flat.
type Config struct {
	// Reconstruction
	SortByDistance      *bool   `json:"sort_by_distance,omitempty"`
	ReconstructInterval *string `json:"reconstruct_interval,omitempty"` // duration string like "1s"

	// Camera
	CameraHeight       *float64 `json:"camera_height,omitempty"` // meters above the world origin
	CameraPitchDegrees *float64 `json:"camera_pitch_degrees,omitempty"`
	FieldOfViewDegrees *float64 `json:"field_of_view_degrees,omitempty"` // horizontal
	AspectRatio        *float64 `json:"aspect_ratio,omitempty"`

	// Detection
	DetectMinArea       *float64 `json:"detect_min_area,omitempty"`
	DetectTolerance     *float64 `json:"detect_tolerance,omitempty"`
	DetectMaxDimension  *int     `json:"detect_max_dimension,omitempty"`
	DetectEdgeThreshold *int     `json:"detect_edge_threshold,omitempty"`
	DetectEdgeBand      *float64 `json:"detect_edge_band,omitempty"`
	DetectBlurSigma     *float64 `json:"detect_blur_sigma,omitempty"`
	DetectTimeout       *string  `json:"detect_timeout,omitempty"`

	// Overlay
	MeshThickness *float64 `json:"mesh_thickness,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	cam := hittest.DefaultCamera()
	det := detection.DefaultOptions()
	return &Config{
		SortByDistance:      ptrBool(reconstruct.DefaultResolveOptions().SortByDistance),
		ReconstructInterval: ptrString("1s"),
		CameraHeight:        ptrFloat64(cam.Position.Y),
		CameraPitchDegrees:  ptrFloat64(cam.Pitch * 180 / math.Pi),
		FieldOfViewDegrees:  ptrFloat64(cam.FieldOfView * 180 / math.Pi),
		AspectRatio:         ptrFloat64(cam.AspectRatio),
		DetectMinArea:       ptrFloat64(det.MinArea),
		DetectTolerance:     ptrFloat64(det.Tolerance),
		DetectMaxDimension:  ptrInt(det.MaxDimension),
		DetectEdgeThreshold: ptrInt(int(det.EdgeThreshold)),
		DetectEdgeBand:      ptrFloat64(det.EdgeBand),
		DetectBlurSigma:     ptrFloat64(det.BlurSigma),
		DetectTimeout:       ptrString("5s"),
		MeshThickness:       ptrFloat64(overlay.DefaultThickness),
	}
}

// Load reads a Config from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if err := validDuration("reconstruct_interval", c.ReconstructInterval); err != nil {
		return err
	}
	if err := validDuration("detect_timeout", c.DetectTimeout); err != nil {
		return err
	}

	if c.CameraPitchDegrees != nil {
		if *c.CameraPitchDegrees < -90 || *c.CameraPitchDegrees > 90 {
			return fmt.Errorf("camera_pitch_degrees must be between -90 and 90, got %f", *c.CameraPitchDegrees)
		}
	}
	if c.FieldOfViewDegrees != nil {
		if *c.FieldOfViewDegrees <= 0 || *c.FieldOfViewDegrees >= 180 {
			return fmt.Errorf("field_of_view_degrees must be between 0 and 180 exclusive, got %f", *c.FieldOfViewDegrees)
		}
	}
	if c.AspectRatio != nil && !(*c.AspectRatio > 0) {
		return fmt.Errorf("aspect_ratio must be positive, got %f", *c.AspectRatio)
	}

	if c.DetectMinArea != nil {
		if *c.DetectMinArea < 0 || *c.DetectMinArea > 1 {
			return fmt.Errorf("detect_min_area must be between 0 and 1, got %f", *c.DetectMinArea)
		}
	}
	if c.DetectTolerance != nil {
		if *c.DetectTolerance < 0 || *c.DetectTolerance > 1 {
			return fmt.Errorf("detect_tolerance must be between 0 and 1, got %f", *c.DetectTolerance)
		}
	}
	if c.DetectMaxDimension != nil && *c.DetectMaxDimension < 16 {
		return fmt.Errorf("detect_max_dimension must be at least 16, got %d", *c.DetectMaxDimension)
	}
	if c.DetectEdgeThreshold != nil {
		if *c.DetectEdgeThreshold < 1 || *c.DetectEdgeThreshold > 255 {
			return fmt.Errorf("detect_edge_threshold must be between 1 and 255, got %d", *c.DetectEdgeThreshold)
		}
	}
	if c.DetectEdgeBand != nil && *c.DetectEdgeBand < 0 {
		return fmt.Errorf("detect_edge_band must be non-negative, got %f", *c.DetectEdgeBand)
	}
	if c.DetectBlurSigma != nil && *c.DetectBlurSigma < 0 {
		return fmt.Errorf("detect_blur_sigma must be non-negative, got %f", *c.DetectBlurSigma)
	}

	if c.MeshThickness != nil && *c.MeshThickness < 0 {
		return fmt.Errorf("mesh_thickness must be non-negative, got %f", *c.MeshThickness)
	}

	return nil
}

func validDuration(name string, v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must be non-negative, got %s", name, d)
	}
	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

// GetSortByDistance returns the sort_by_distance value or the default.
func (c *Config) GetSortByDistance() bool {
	if c.SortByDistance == nil {
		return true
	}
	return *c.SortByDistance
}

// GetReconstructInterval returns the minimum spacing between reconstructions
// while a touch is held.
func (c *Config) GetReconstructInterval() time.Duration {
	return durationOr(c.ReconstructInterval, time.Second)
}

// GetDetectTimeout bounds a single background detection run.
func (c *Config) GetDetectTimeout() time.Duration {
	return durationOr(c.DetectTimeout, 5*time.Second)
}

// GetMeshThickness returns the mesh_thickness value or the default.
func (c *Config) GetMeshThickness() float64 {
	if c.MeshThickness == nil {
		return overlay.DefaultThickness
	}
	return *c.MeshThickness
}

// ResolveOptions builds the resolver options.
func (c *Config) ResolveOptions() reconstruct.ResolveOptions {
	return reconstruct.ResolveOptions{SortByDistance: c.GetSortByDistance()}
}

// Camera builds the initial camera, hanging above the origin.
func (c *Config) Camera() hittest.Camera {
	cam := hittest.DefaultCamera()
	if c.CameraHeight != nil {
		cam.Position.Y = *c.CameraHeight
	}
	if c.CameraPitchDegrees != nil {
		cam.Pitch = *c.CameraPitchDegrees * math.Pi / 180
	}
	if c.FieldOfViewDegrees != nil {
		cam.FieldOfView = *c.FieldOfViewDegrees * math.Pi / 180
	}
	if c.AspectRatio != nil {
		cam.AspectRatio = *c.AspectRatio
	}
	return cam
}

// DetectOptions builds the detector options. Unset fields stay zero and take
// the detector's own defaults.
func (c *Config) DetectOptions() detection.Options {
	var o detection.Options
	if c.DetectMinArea != nil {
		o.MinArea = *c.DetectMinArea
	}
	if c.DetectTolerance != nil {
		o.Tolerance = *c.DetectTolerance
	}
	if c.DetectMaxDimension != nil {
		o.MaxDimension = *c.DetectMaxDimension
	}
	if c.DetectEdgeThreshold != nil {
		o.EdgeThreshold = uint8(*c.DetectEdgeThreshold)
	}
	if c.DetectEdgeBand != nil {
		o.EdgeBand = *c.DetectEdgeBand
	}
	if c.DetectBlurSigma != nil {
		o.BlurSigma = *c.DetectBlurSigma
	}
	return o
}
