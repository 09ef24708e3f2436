package config

// BasicService is used as a simple base for client services like
// Prometheus monitoring or pprof.
type BasicService struct {
	Enabled bool `yaml:"Enabled"`
	// Addresses holds the list of bind addresses in the form of "address:port".
	Addresses []string `yaml:"Addresses"`
}
