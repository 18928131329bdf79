package feed

import (
	"log/slog"
	"sort"
)

// constructors maps source names to their publisher-specific parsers.
// Sources without an entry get the standards-conforming defaults.
var constructors = map[string]func(Config, *slog.Logger) *BaseParser{
	"fox_news":   NewFoxParser,
	"nbc":        NewNBCParser,
	"bbc":        NewBBCParser,
	"dw":         NewDWParser,
	"france":     NewFrance24Parser,
	"daily_wire": NewDailyWireParser,
}

// New builds the parser for a source name. Unknown names get the default
// parser so a newly configured publisher works before it has a dedicated
// variant.
func New(name string, cfg Config, log *slog.Logger) *BaseParser {
	if ctor, ok := constructors[name]; ok {
		return ctor(cfg, log)
	}
	return NewDefaultParser(name, cfg, log)
}

// Specialized lists the source names that have publisher-specific parsers.
func Specialized() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
