package logging

import (
	"os"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is the environment variable name prefix for log levels.
//
//	RXQPOLL_LOG=D           sets every package to DEBUG
//	RXQPOLL_LOG_ingest=W    sets package "ingest" to WARN
const EnvPrefix = "RXQPOLL_LOG"

// levelLetters maps the first letter of a level string to a zap level.
var levelLetters = map[byte]zapcore.Level{
	'V': zap.DebugLevel,
	'D': zap.DebugLevel,
	'I': zap.InfoLevel,
	'W': zap.WarnLevel,
	'E': zap.ErrorLevel,
	'F': zap.DPanicLevel,
	'N': zap.DPanicLevel,
}

// PkgLevel represents log level of a package.
type PkgLevel struct {
	pkg string
	lvl byte
	al  zap.AtomicLevel
}

// Package returns package name.
func (pl PkgLevel) Package() string {
	return pl.pkg
}

// Level returns log level as a letter.
func (pl PkgLevel) Level() byte {
	return pl.lvl
}

// SetLevel assigns log level.
// The first letter of input selects the level: V or D for DEBUG, I for INFO, W for WARN, E for ERROR,
// F or N for no logging below DPANIC. Anything else means INFO.
func (pl *PkgLevel) SetLevel(input string) {
	pl.lvl = 'I'
	if input != "" {
		if _, ok := levelLetters[input[0]]; ok {
			pl.lvl = input[0]
		}
	}
	pl.al.SetLevel(levelLetters[pl.lvl])
}

var (
	pkgLevelsLock sync.Mutex
	pkgLevels     = map[string]*PkgLevel{}
)

// ListLevels returns all package levels, sorted by package name.
func ListLevels() (list []PkgLevel) {
	pkgLevelsLock.Lock()
	defer pkgLevelsLock.Unlock()
	for _, pl := range pkgLevels {
		list = append(list, *pl)
	}
	slices.SortFunc(list, func(a, b PkgLevel) int { return strings.Compare(a.pkg, b.pkg) })
	return list
}

// FindLevel returns package log level object, or nil if the package has no logger.
func FindLevel(pkg string) *PkgLevel {
	pkgLevelsLock.Lock()
	defer pkgLevelsLock.Unlock()
	return pkgLevels[pkg]
}

// GetLevel finds or creates package log level object.
// A new object takes its initial level from the environment.
func GetLevel(pkg string) *PkgLevel {
	pkgLevelsLock.Lock()
	defer pkgLevelsLock.Unlock()
	if pl := pkgLevels[pkg]; pl != nil {
		return pl
	}

	pl := &PkgLevel{pkg: pkg, al: zap.NewAtomicLevel()}
	v, ok := os.LookupEnv(EnvPrefix + "_" + pkg)
	if !ok {
		v = os.Getenv(EnvPrefix)
	}
	pl.SetLevel(v)
	pkgLevels[pkg] = pl
	return pl
}
