package camera

import "sort"

// Preset names for common capture modes.
const (
	PresetDefault = "default"
	PresetVGA     = "vga"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
)

// Presets returns the capture settings for each named mode.
func Presets() map[string]Settings {
	return map[string]Settings{
		PresetDefault: DefaultSettings(),
		PresetVGA:     {Width: 640, Height: 480, FPS: 30},
		Preset720p:    {Width: 1280, Height: 720, FPS: 30},
		Preset1080p:   {Width: 1920, Height: 1080, FPS: 30},
	}
}

// PresetNames returns all preset names, sorted.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset looks up a preset by name.
func GetPreset(name string) (Settings, bool) {
	s, ok := Presets()[name]
	return s, ok
}
