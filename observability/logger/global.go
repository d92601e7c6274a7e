package logger

import "sync"

//nolint:gochecknoglobals // process-wide logger behind Named
var (
	globalMu  sync.Mutex
	global    Logger
	globalSet bool
)

// SetGlobal installs the logger every Named call derives from.
// It panics when called twice or when cfg does not build a logger.
func SetGlobal(cfg Config) {
	l, err := newLogger(cfg)
	if err != nil {
		panic("[logger]: failed to initialize global logger: " + err.Error())
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	if globalSet {
		panic("[logger]: SetGlobal can only be called once")
	}
	global, globalSet = l, true
}

// Named returns a child of the global logger.
// Until SetGlobal runs, the global logger writes info and above as console text.
// Loggers taken before SetGlobal keep writing through that default.
func Named(name string) Logger {
	return current().Named(name)
}

func current() Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		l, err := newLogger(Config{Level: levelInfo, Encoding: encConsole})
		if err != nil {
			panic("[logger]: failed to initialize default logger: " + err.Error())
		}
		global = l
	}
	return global
}
