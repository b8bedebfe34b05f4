package camera

import "fmt"

// Settings are capture properties requested from the device driver.
// Zero values leave the driver default in place; drivers are free to
// pick the nearest mode they support, so the frame dimensions reported
// on captured frames are authoritative.
type Settings struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	FPS    int `json:"fps"`
}

// DefaultSettings keeps every driver default.
func DefaultSettings() Settings {
	return Settings{}
}

// Validate rejects negative dimensions and rates.
func (s Settings) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("capture size %dx%d out of range", s.Width, s.Height)
	}
	if s.FPS < 0 {
		return fmt.Errorf("capture rate %d out of range", s.FPS)
	}
	return nil
}

func (s Settings) String() string {
	if s == (Settings{}) {
		return "driver defaults"
	}
	return fmt.Sprintf("%dx%d@%d", s.Width, s.Height, s.FPS)
}
