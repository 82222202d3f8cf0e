package config

// ViewConfig tunes the windowed view renderer.
type ViewConfig struct {
	// ShallowDepth is the number of levels below the rendered root that are
	// always visible.
	ShallowDepth int `yaml:"shallow_depth" json:"shallow_depth,omitempty"`
	// SmallSubtreeLines is the display-line count at or below which a subtree
	// is shown in full.
	SmallSubtreeLines int `yaml:"small_subtree_lines" json:"small_subtree_lines,omitempty"`
	// DescriptionWidth truncates single-line descriptions.
	DescriptionWidth int `yaml:"description_width" json:"description_width,omitempty"`
}

// DefaultViewConfig returns the renderer defaults.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		ShallowDepth:      2,
		SmallSubtreeLines: 25,
		DescriptionWidth:  100,
	}
}
