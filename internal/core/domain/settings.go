package domain

const (
	// DefaultQuality is used when no quality has been persisted
	DefaultQuality = 85
	MinQuality     = 1
	MaxQuality     = 100
)

// Settings is the user preference blob persisted through the settings store
type Settings struct {
	Quality int `yaml:"quality"`
}

// DefaultSettings returns settings with every field at its default
func DefaultSettings() Settings {
	return Settings{Quality: DefaultQuality}
}

// ClampQuality forces q into [MinQuality, MaxQuality]
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// QualityFactor converts a stored quality into the 0.0-1.0 encoder factor
func QualityFactor(q int) float32 {
	return float32(ClampQuality(q)) / 100
}
