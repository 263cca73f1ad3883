package logger

import "sync"

// named maps component names to loggers configured for them.
var named sync.Map

// Register makes l the logger returned by Get(name). Binaries register their
// component loggers once at startup so packages that fall back to Get pick
// up the binary's output and level.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
