package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagFormat = flag.String("format", "", "Output format: c or bin")
	flagName   = flag.String("name", "", "Model name for emitted symbols")
	flagTPS    = flag.Int("tps", 0, "Target ticks per second")
	flagScale  = flag.Float64("scale", 0, "Uniform model scale")
	flagFP     = flag.Float64("fixed-point-scale", 0, "Fixed-point position scale")
)

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	if *flagName != "" {
		cfg.Output.Name = *flagName
	}
	if *flagTPS > 0 {
		cfg.Convert.TicksPerSecond = uint16(*flagTPS)
	}
	if *flagScale > 0 {
		cfg.Convert.ModelScale = float32(*flagScale)
	}
	if *flagFP > 0 {
		cfg.Convert.FixedPointScale = float32(*flagFP)
	}
}
