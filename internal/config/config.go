package config

import "time"

// Defaults for the smoothing pipeline and the preview loop. The laser
// wavenumber and cutoff match the IFS125HR deployments this tool was
// written for; sites override them in the config file.
const (
	DefaultLaserWavenumber = 15798.022 // HeNe reference laser, cm^-1
	DefaultCutoff          = 3700      // low-pass cutoff, cm^-1
	DefaultWindowLength    = 4000      // samples around the centerburst
	DefaultRefreshRate     = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultWSAddress       = "127.0.0.1:8571"
	DefaultProbeBytes      = 17428 // prefix size that covers header + directory
)

// Config is the runtime configuration, loaded from YAML with environment
// overrides applied on top.
type Config struct {
	LogLevel     string          `yaml:"log_level"`
	SelectedSite string          `yaml:"selected_site"`
	Sites        map[string]Site `yaml:"sites"`
	Smoothing    Smoothing       `yaml:"smoothing"`
	Preview      Preview         `yaml:"preview"`
	Transport    Transport       `yaml:"transport"`
}

// Site describes one instrument installation: the address of its embedded
// web panel and the command paths its firmware expects.
type Site struct {
	IP               string `yaml:"ip"`
	PreviewCommands  string `yaml:"preview_commands"`
	ShutdownCommands string `yaml:"shutdown_commands"`
}

// Smoothing holds the interferogram smoothing parameters.
type Smoothing struct {
	LaserWavenumber float64 `yaml:"lwn"`    // reference laser wavenumber in cm^-1
	Cutoff          float64 `yaml:"cutoff"` // low-pass cutoff in cm^-1
	WindowLength    int     `yaml:"npt"`    // crop length in samples
}

// Preview holds the measurement loop settings.
type Preview struct {
	RefreshRate time.Duration `yaml:"refresh_rate"` // pause between measurement cycles
}

// Transport holds the frame publishing settings.
type Transport struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddress string `yaml:"websocket_address"`
}

// New returns a Config populated with built-in defaults.
func New() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Sites:    map[string]Site{},
		Smoothing: Smoothing{
			LaserWavenumber: DefaultLaserWavenumber,
			Cutoff:          DefaultCutoff,
			WindowLength:    DefaultWindowLength,
		},
		Preview: Preview{
			RefreshRate: DefaultRefreshRate,
		},
		Transport: Transport{
			WebSocketEnabled: false,
			WebSocketAddress: DefaultWSAddress,
		},
	}
}
