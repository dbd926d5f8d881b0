package config

const (
	defaultOutputDir      = "~/.local/share/asepack/output"
	defaultCatalogPath    = "~/.local/share/asepack/catalog.db"
	defaultLogDir         = "~/.local/share/asepack/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultMaxAtlasWidth  = 2048
	defaultMaxAtlasHeight = 2048
	defaultPadding        = 1
	defaultWorkers        = 2
	defaultPollIntervalMS = 20
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			CatalogPath: defaultCatalogPath,
			LogDir:      defaultLogDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Packing: Packing{
			MaxAtlasWidth:  defaultMaxAtlasWidth,
			MaxAtlasHeight: defaultMaxAtlasHeight,
			Padding:        defaultPadding,
		},
		Workflow: Workflow{
			Workers:        defaultWorkers,
			PollIntervalMS: defaultPollIntervalMS,
		},
	}
}
