package observability

// Config captures opt-in observability toggles that wire into the server.
type Config struct {
	EnablePprof   bool `yaml:"enable_pprof" json:"enablePprof"`
	EnableMetrics bool `yaml:"enable_metrics" json:"enableMetrics"`
}
