package cfgloader

type options struct {
	envFiles []string
}

// Option configures Load and Parse.
type Option func(*options)

// WithEnvFiles loads dotenv files into the process environment before ${VAR}
// references are expanded. Missing files are skipped and variables already set win.
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.envFiles = append(o.envFiles, files...)
	}
}
