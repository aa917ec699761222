package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Value is the interface every registered parameter's storage must satisfy: Set parses a
// command-line or config-file string form.
type Value interface {
	Set(string) error
	String() string
}

// valueSetter is implemented by every Value in this package in addition to Value itself, to
// accept a typed value decoded from an HCL config file (an int, float64, bool, string, or
// nested []interface{}/map[string]interface{}) without a stringify/reparse round trip.
type valueSetter interface {
	SetValue(interface{}) error
}

type Option int

const (
	Default      Option = 0
	NoUpdate     Option = 1 << iota // can not be updated after startup
	NoConfigFile                    // can not be specified in a config file
)

func addOption(s, opt string) string {
	if s != "" {
		s += " | "
	}
	return s + opt
}

func (o Option) String() string {
	var s string
	if (o & NoUpdate) != 0 {
		s = addOption(s, "NoUpdate")
	}
	if (o & NoConfigFile) != 0 {
		s = addOption(s, "NoConfigFile")
	}
	if s == "" {
		return "Default"
	}
	return s
}

type Param struct {
	Name    string
	Val     Value
	Options Option
}

type nameVal struct {
	name string
	val  string
}

// Config is a set of named, typed parameters, settable from the command line (via -set
// name=value), an HCL config file, or directly by a running program, and enumerable for
// listing. The zero value is not usable; construct one with New.
type Config struct {
	params     map[string]*Param
	args       []nameVal
	configFile string
	noConfig   bool
	list       bool
}

// New returns an empty Config with no registered parameters.
func New() *Config {
	return &Config{}
}

// std is the default Config that the package-level functions (Flags, Load, Update,
// AllParams, Parameter, and the *Param constructors) operate on, matching the single
// process-wide parameter set a command-line tool needs.
var std = New()

func (cfg *Config) Set(s string) error {
	ss := strings.SplitN(s, "=", 2)
	if len(ss) != 2 {
		return fmt.Errorf("config: expected name=value; got %s", s)
	}
	cfg.args = append(cfg.args, nameVal{ss[0], ss[1]})
	return nil
}

func (*Config) String() string {
	return ""
}

func (cfg *Config) flags(fs *flag.FlagSet, param, noConfig, configFile, listConfig string) {
	fs.Var(cfg, param, "set `param=value`")

	if noConfig != "" {
		fs.BoolVar(&cfg.noConfig, noConfig, false, "don't load a config file")
	}
	if configFile != "" {
		fs.StringVar(&cfg.configFile, configFile, "", "`file` to load config from")
	}
	if listConfig != "" {
		fs.BoolVar(&cfg.list, listConfig, false, "list the config and then exit")
	}
}

func Flags(param, noConfig, configFile, listConfig string) {
	std.flags(flag.CommandLine, param, noConfig, configFile, listConfig)
}

type paramSlice []*Param

func (ps paramSlice) Len() int      { return len(ps) }
func (ps paramSlice) Swap(i, j int) { ps[i], ps[j] = ps[j], ps[i] }
func (ps paramSlice) Less(i, j int) bool {
	return strings.Compare(ps[i].Name, ps[j].Name) < 0
}

func (cfg *Config) allParams() []*Param {
	list := make([]*Param, 0, len(cfg.params))
	for _, param := range cfg.params {
		list = append(list, param)
	}
	sort.Sort(paramSlice(list))
	return list
}

// AllParams returns every registered parameter, sorted by name, for --list-config and
// `rowsetctl inspect`.
func AllParams() []*Param {
	return std.allParams()
}

func (cfg *Config) listConfig() {
	for _, param := range cfg.allParams() {
		fmt.Printf("%s=%s\n", param.Name, param.Val)
	}
}

func (cfg *Config) setParam(name, val string, opt Option) error {
	param, ok := cfg.params[name]
	if !ok {
		return fmt.Errorf("%s is not a param", name)
	}
	if err := checkOption(name, param.Options, opt); err != nil {
		return err
	}
	if err := param.Val.Set(val); err != nil {
		return fmt.Errorf("param %s: %s", name, err)
	}
	return nil
}

// setParamValue applies a typed value (as decoded from an HCL file) to a registered parameter.
func (cfg *Config) setParamValue(name string, val interface{}, opt Option) error {
	param, ok := cfg.params[name]
	if !ok {
		return fmt.Errorf("%s is not a config variable", name)
	}
	if err := checkOption(name, param.Options, opt); err != nil {
		return err
	}
	setter, ok := param.Val.(valueSetter)
	if !ok {
		return fmt.Errorf("param %s: does not accept a config file value", name)
	}
	if err := setter.SetValue(val); err != nil {
		return fmt.Errorf("param %s: %s", name, err)
	}
	return nil
}

func checkOption(name string, has, opt Option) error {
	if (has & opt) == 0 {
		return nil
	}
	switch opt {
	case NoUpdate:
		return fmt.Errorf("%s may not be updated", name)
	case NoConfigFile:
		return fmt.Errorf("%s may not be set in a config file", name)
	default:
		panic("unexpected option")
	}
}

func (cfg *Config) update(name, val string) error {
	return cfg.setParam(name, val, NoUpdate)
}

func Update(name, val string) error {
	return std.update(name, val)
}

func (cfg *Config) load(configFile string) error {
	if !cfg.noConfig {
		if cfg.configFile != "" {
			configFile = cfg.configFile
		}
		if configFile != "" {
			if err := cfg.loadHCL(configFile); err != nil {
				return err
			}
		}
	}

	for _, arg := range cfg.args {
		if err := cfg.setParam(arg.name, arg.val, Default); err != nil {
			return err
		}
	}

	if cfg.list {
		cfg.listConfig()
		os.Exit(0)
	}
	return nil
}

// Load applies an HCL config file (unless -no-config was given: the -config-file flag's value if
// it was set, otherwise configFile, and none if both are empty) and then any -set name=value
// arguments, in that order, so command-line overrides win.
func Load(configFile string) error {
	return std.load(configFile)
}

func (cfg *Config) boolParam(p *bool, name string, b bool, opts Option) *bool {
	*p = b
	cfg.param((*boolValue)(p), name, opts)
	return p
}

func BoolParam(p *bool, name string, b bool, opts Option) *bool {
	return std.boolParam(p, name, b, opts)
}

func (cfg *Config) durationParam(p *time.Duration, name string, d time.Duration,
	opts Option) *time.Duration {

	*p = d
	cfg.param((*durationValue)(p), name, opts)
	return p
}

func DurationParam(p *time.Duration, name string, d time.Duration, opts Option) *time.Duration {
	return std.durationParam(p, name, d, opts)
}

func (cfg *Config) float64Param(p *float64, name string, f float64, opts Option) *float64 {
	*p = f
	cfg.param((*float64Value)(p), name, opts)
	return p
}

func Float64Param(p *float64, name string, f float64, opts Option) *float64 {
	return std.float64Param(p, name, f, opts)
}

func (cfg *Config) intParam(p *int, name string, i int, opts Option) *int {
	*p = i
	cfg.param((*intValue)(p), name, opts)
	return p
}

func IntParam(p *int, name string, i int, opts Option) *int {
	return std.intParam(p, name, i, opts)
}

func (cfg *Config) int64Param(p *int64, name string, i int64, opts Option) *int64 {
	*p = i
	cfg.param((*int64Value)(p), name, opts)
	return p
}

func Int64Param(p *int64, name string, i int64, opts Option) *int64 {
	return std.int64Param(p, name, i, opts)
}

func (cfg *Config) stringParam(p *string, name string, s string, opts Option) *string {
	*p = s
	cfg.param((*stringValue)(p), name, opts)
	return p
}

func StringParam(p *string, name string, s string, opts Option) *string {
	return std.stringParam(p, name, s, opts)
}

func (cfg *Config) uintParam(p *uint, name string, u uint, opts Option) *uint {
	*p = u
	cfg.param((*uintValue)(p), name, opts)
	return p
}

func UintParam(p *uint, name string, u uint, opts Option) *uint {
	return std.uintParam(p, name, u, opts)
}

func (cfg *Config) uint64Param(p *uint64, name string, u uint64, opts Option) *uint64 {
	*p = u
	cfg.param((*uint64Value)(p), name, opts)
	return p
}

func Uint64Param(p *uint64, name string, u uint64, opts Option) *uint64 {
	return std.uint64Param(p, name, u, opts)
}

func (cfg *Config) param(val Value, name string, opts Option) {
	if _, ok := cfg.params[name]; ok {
		panic(fmt.Sprintf("config: param redefined: %s", name))
	}
	if cfg.params == nil {
		cfg.params = make(map[string]*Param)
	}
	cfg.params[name] = &Param{name, val, opts}
}

func Parameter(val Value, name string, opts Option) {
	std.param(val, name, opts)
}
