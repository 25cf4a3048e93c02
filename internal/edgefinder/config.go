package edgefinder

// Config holds every tunable of the pipeline. It is a value type: build it
// once per run with DefaultConfig, override fields, call Validate, and pass
// it to each stage.
type Config struct {
	// Offset is the crop margin in source pixels added around the
	// illuminated region.
	Offset int `json:"offset"`

	// Pixels is the subpixel multiplier (samples per source pixel per axis).
	Pixels int `json:"pixels"`

	// ThresholdLight marks the illuminated region (1-255).
	ThresholdLight int `json:"threshold_light"`

	// ThresholdDark separates the dark substrate and droplet from the
	// background (1-255).
	ThresholdDark int `json:"threshold_dark"`

	// BaselineFit is the number of edge samples taken on each side of the
	// illuminated span for the baseline fit.
	BaselineFit int `json:"bl_fit"`

	// BaselineIgnore is the number of columns skipped inside each end of
	// the illuminated span before sampling.
	BaselineIgnore int `json:"bl_ignore"`

	// BaselineOffset is the number of rows above the baseline at which the
	// edge trace starts.
	BaselineOffset int `json:"bl_offset"`

	// TangentIgnore is the number of edge points skipped at the start of
	// each edge sequence before the tangent window.
	TangentIgnore int `json:"tan_ignore"`

	// TangentFit is the number of edge points in the tangent window.
	TangentFit int `json:"tan_fit"`
}

// DefaultConfig returns the configuration used for the reference
// measurements.
func DefaultConfig() Config {
	return Config{
		Offset:         100,
		Pixels:         2,
		ThresholdLight: 200,
		ThresholdDark:  72,
		BaselineFit:    20,
		BaselineIgnore: 20,
		BaselineOffset: 5,
		TangentIgnore:  10,
		TangentFit:     10,
	}
}

// Validate reports the first field outside its valid range.
func (c Config) Validate() error {
	checks := []struct {
		field  string
		value  int
		ok     bool
		reason string
	}{
		{"offset", c.Offset, c.Offset >= 0, "must be >= 0"},
		{"pixels", c.Pixels, c.Pixels >= 1, "must be >= 1"},
		{"threshold_light", c.ThresholdLight, c.ThresholdLight >= 1 && c.ThresholdLight <= 255, "must be in 1-255"},
		{"threshold_dark", c.ThresholdDark, c.ThresholdDark >= 1 && c.ThresholdDark <= 255, "must be in 1-255"},
		{"bl_fit", c.BaselineFit, c.BaselineFit >= 1, "must be >= 1"},
		{"bl_ignore", c.BaselineIgnore, c.BaselineIgnore >= 0, "must be >= 0"},
		{"bl_offset", c.BaselineOffset, c.BaselineOffset >= 1, "must be >= 1"},
		{"tan_ignore", c.TangentIgnore, c.TangentIgnore >= 0, "must be >= 0"},
		{"tan_fit", c.TangentFit, c.TangentFit >= 2, "must be >= 2"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return &ConfigError{Field: ch.field, Value: ch.value, Reason: ch.reason}
		}
	}
	return nil
}

// Merge returns c with every non-zero field of o applied on top. Use Apply
// when an override must be able to set a field to 0.
func (c Config) Merge(o Config) Config {
	pick := func(base, over int) int {
		if over != 0 {
			return over
		}
		return base
	}
	return Config{
		Offset:         pick(c.Offset, o.Offset),
		Pixels:         pick(c.Pixels, o.Pixels),
		ThresholdLight: pick(c.ThresholdLight, o.ThresholdLight),
		ThresholdDark:  pick(c.ThresholdDark, o.ThresholdDark),
		BaselineFit:    pick(c.BaselineFit, o.BaselineFit),
		BaselineIgnore: pick(c.BaselineIgnore, o.BaselineIgnore),
		BaselineOffset: pick(c.BaselineOffset, o.BaselineOffset),
		TangentIgnore:  pick(c.TangentIgnore, o.TangentIgnore),
		TangentFit:     pick(c.TangentFit, o.TangentFit),
	}
}

// Overrides is a partial Config as sent by a request. A nil field keeps the
// base value; a non-nil field replaces it even when it points at 0.
type Overrides struct {
	Offset         *int `json:"offset,omitempty"`
	Pixels         *int `json:"pixels,omitempty"`
	ThresholdLight *int `json:"threshold_light,omitempty"`
	ThresholdDark  *int `json:"threshold_dark,omitempty"`
	BaselineFit    *int `json:"bl_fit,omitempty"`
	BaselineIgnore *int `json:"bl_ignore,omitempty"`
	BaselineOffset *int `json:"bl_offset,omitempty"`
	TangentIgnore  *int `json:"tan_ignore,omitempty"`
	TangentFit     *int `json:"tan_fit,omitempty"`
}

// Apply returns c with every field set in o replacing the value in c. The
// result is not validated.
func (c Config) Apply(o Overrides) Config {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Offset, o.Offset)
	set(&c.Pixels, o.Pixels)
	set(&c.ThresholdLight, o.ThresholdLight)
	set(&c.ThresholdDark, o.ThresholdDark)
	set(&c.BaselineFit, o.BaselineFit)
	set(&c.BaselineIgnore, o.BaselineIgnore)
	set(&c.BaselineOffset, o.BaselineOffset)
	set(&c.TangentIgnore, o.TangentIgnore)
	set(&c.TangentFit, o.TangentFit)
	return c
}
