// Package flags holds runtime-toggleable behavior switches. Config registers them as ordinary
// bool config parameters, so they can be flipped via the same -set mechanism as any other
// parameter and are listed by --list-config along with the rest.
package flags

import (
	"strings"

	"github.com/leftmike/rowset/config"
)

type Flag int

const (
	PushdownKeyRange Flag = iota
	PushdownProjection
)

type flagDefault struct {
	flag Flag
	def  bool
}

var defaultFlags = map[string]flagDefault{
	"pushdown_key_range":  {PushdownKeyRange, true},
	"pushdown_projection": {PushdownProjection, true},
}

func LookupFlag(nam string) (Flag, bool) {
	fd, ok := defaultFlags[strings.ToLower(nam)]
	return fd.flag, ok
}

func ListFlags(fn func(nam string, f Flag)) {
	for nam, fd := range defaultFlags {
		fn(nam, fd.flag)
	}
}

type Flags []bool

func (flgs Flags) GetFlag(f Flag) bool {
	return flgs[f]
}

// Config registers every flag as an updatable bool parameter on the process-wide Config and
// returns the backing slice, indexed by Flag.
func Config() Flags {
	flgs := make([]bool, len(defaultFlags))
	for nam, fd := range defaultFlags {
		flgs[fd.flag] = fd.def
		config.BoolParam(&flgs[fd.flag], nam, fd.def, config.Default)
	}
	return flgs
}

func Default() Flags {
	flgs := make([]bool, len(defaultFlags))
	for _, fd := range defaultFlags {
		flgs[fd.flag] = fd.def
	}
	return flgs
}
