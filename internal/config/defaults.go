package config

const (
	defaultOutputDir        = "~/tiles"
	defaultScratchDir       = "~/.cache/tilefetch/scratch"
	defaultLogDir           = "~/.local/share/tilefetch/logs"
	defaultGridNameProperty = "tile_name"
	defaultPortalURL        = "https://environment.data.gov.uk/DefraDataDownload/?Mode=survey"
	defaultProduct          = "national"
	defaultYear             = "latest"
	defaultStepTimeout      = 300
	defaultDownloadTimeout  = 1800
	defaultMaxAttempts      = 3
	defaultCooldownSeconds  = 5
	defaultTilePauseSeconds = 0
	defaultVertexLimit      = 1000
	defaultGDALBinary       = "gdal_translate"
	defaultCOGBlockSize     = 512
	defaultCOGCompression   = "DEFLATE"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:        defaultOutputDir,
			ScratchDir:       defaultScratchDir,
			LogDir:           defaultLogDir,
			GridNameProperty: defaultGridNameProperty,
		},
		Portal: Portal{
			URL:         defaultPortalURL,
			Product:     defaultProduct,
			Year:        defaultYear,
			StepTimeout: defaultStepTimeout,
			Headless:    true,
		},
		Download: Download{
			Timeout: defaultDownloadTimeout,
		},
		Retry: Retry{
			MaxAttempts:      defaultMaxAttempts,
			CooldownSeconds:  defaultCooldownSeconds,
			TilePauseSeconds: defaultTilePauseSeconds,
		},
		Geometry: Geometry{
			VertexLimit:     defaultVertexLimit,
			ExpandNeighbors: true,
		},
		Conversion: Conversion{
			Enabled:     true,
			GDALBinary:  defaultGDALBinary,
			BlockSize:   defaultCOGBlockSize,
			Compression: defaultCOGCompression,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
