package board

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"card-tracer/pkg/geometry"
)

// Session holds the working state for one photographed board: image
// dimensions, the current calibration, and the labeled markers. It is the
// mutable shell around the pure detection and inference functions.
type Session struct {
	mu sync.RWMutex

	ImageWidth  int
	ImageHeight int

	calibration *Calibration
	markers     []LabeledMarker
}

// NewSession creates a session for an image of the given dimensions.
func NewSession(width, height int) (*Session, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	return &Session{ImageWidth: width, ImageHeight: height}, nil
}

// SetCalibration replaces the calibration reference wholesale.
func (s *Session) SetCalibration(c Calibration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibration = &c
}

// Calibration returns the current calibration, or false if none is set.
func (s *Session) Calibration() (Calibration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.calibration == nil {
		return Calibration{}, false
	}
	return *s.calibration, true
}

// AddMarker appends a labeled marker, preserving insertion order.
func (s *Session) AddMarker(m LabeledMarker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, m)
}

// RemoveMarker deletes the marker with the given ID. Returns false if no
// such marker exists.
func (s *Session) RemoveMarker(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.markers {
		if m.ID == id {
			s.markers = append(s.markers[:i], s.markers[i+1:]...)
			return true
		}
	}
	return false
}

// SetLabel attaches an identity to the marker with the given ID.
func (s *Session) SetLabel(id string, identity *CardIdentity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.markers {
		if s.markers[i].ID == id {
			s.markers[i].Identity = identity
			return true
		}
	}
	return false
}

// Markers returns a copy of all markers in insertion order.
func (s *Session) Markers() []LabeledMarker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LabeledMarker, len(s.markers))
	copy(out, s.markers)
	return out
}

// SplitMarkers partitions the labeled markers into trees and dwellers,
// preserving insertion order within each group. Unlabeled markers are
// excluded from both.
func (s *Session) SplitMarkers() (trees, dwellers []LabeledMarker) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.markers {
		switch {
		case m.IsTree():
			trees = append(trees, m)
		case m.IsDweller():
			dwellers = append(dwellers, m)
		}
	}
	return trees, dwellers
}

// MarkerAt returns the first marker whose point lies within radius of p,
// or false if none does. Used to hit-test user clicks.
func (s *Session) MarkerAt(p geometry.Point2D, radius float64) (LabeledMarker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.markers {
		if m.Point.Distance(p) <= radius {
			return m, true
		}
	}
	return LabeledMarker{}, false
}

// sessionFile is the serialized form used by Export/Import.
type sessionFile struct {
	Version     int             `json:"version"`
	ImageWidth  int             `json:"image_width"`
	ImageHeight int             `json:"image_height"`
	Calibration *Calibration    `json:"calibration,omitempty"`
	Markers     []LabeledMarker `json:"markers"`
}

// Export writes the session as JSON to the given path.
func (s *Session) Export(path string) error {
	s.mu.RLock()
	f := sessionFile{
		Version:     1,
		ImageWidth:  s.ImageWidth,
		ImageHeight: s.ImageHeight,
		Calibration: s.calibration,
		Markers:     s.markers,
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Import reads a session previously written by Export.
func Import(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	s, err := NewSession(f.ImageWidth, f.ImageHeight)
	if err != nil {
		return nil, err
	}
	s.calibration = f.Calibration
	s.markers = f.Markers
	return s, nil
}
