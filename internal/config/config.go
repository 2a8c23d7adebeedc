// Package config handles converter configuration loading and management.
package config

// Config holds all conversion settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds the numeric conversion parameters.
type ConvertConfig struct {
	// TicksPerSecond is the playback tick rate clips are resampled to.
	TicksPerSecond uint16 `yaml:"ticks_per_second"`
	// FixedPointScale converts world units into fixed-point position
	// units; it bounds both range and precision of stored positions.
	FixedPointScale float32 `yaml:"fixed_point_scale"`
	// ModelScale uniformly scales the whole model.
	ModelScale float32 `yaml:"model_scale"`
	// RotateModelDeg reorients the whole model, as XYZ Euler angles in
	// degrees.
	RotateModelDeg [3]float32 `yaml:"rotate_model_deg"`
}

// OutputConfig holds emission settings.
type OutputConfig struct {
	// Format selects the sink: "c" for C source/header, "bin" for a
	// BPAK container.
	Format string `yaml:"format"`
	// Name overrides the model name used for emitted symbols; empty
	// derives it from the input file name.
	Name string `yaml:"name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			TicksPerSecond:  30,
			FixedPointScale: 256,
			ModelScale:      1,
		},
		Output: OutputConfig{
			Format: "c",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
