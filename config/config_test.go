package config_test

import (
	"flag"
	"testing"

	"github.com/leftmike/rowset/config"
)

// The package-level functions operate on a single process-wide Config, so every parameter name
// used across this file's tests must be unique: registering the same name twice panics.

func TestBoolParamDefaultAndUpdate(t *testing.T) {
	b := config.BoolParam(new(bool), "test_bool_param", true, config.Default)
	if *b != true {
		t.Fatalf("default: got %v, want true", *b)
	}
	if err := config.Update("test_bool_param", "false"); err != nil {
		t.Fatalf("Update() failed with %s", err)
	}
	if *b != false {
		t.Fatalf("after update: got %v, want false", *b)
	}
}

func TestIntParamNoUpdate(t *testing.T) {
	i := config.IntParam(new(int), "test_int_noupdate", 7, config.NoUpdate)
	if *i != 7 {
		t.Fatalf("default: got %d, want 7", *i)
	}
	if err := config.Update("test_int_noupdate", "8"); err == nil {
		t.Fatal("Update() of a NoUpdate param did not fail")
	}
	if *i != 7 {
		t.Fatalf("after failed update: got %d, want 7", *i)
	}
}

func TestStringParamAndAllParams(t *testing.T) {
	config.StringParam(new(string), "test_string_param", "dflt", config.Default)
	found := false
	for _, p := range config.AllParams() {
		if p.Name == "test_string_param" {
			found = true
			if p.Val.String() != "dflt" {
				t.Errorf("got %s, want dflt", p.Val.String())
			}
		}
	}
	if !found {
		t.Error("test_string_param not present in AllParams()")
	}
}

func TestRedefiningParamPanics(t *testing.T) {
	config.IntParam(new(int), "test_redefine", 1, config.Default)
	defer func() {
		if r := recover(); r == nil {
			t.Error("redefining a param did not panic")
		}
	}()
	config.IntParam(new(int), "test_redefine", 2, config.Default)
}

func TestSetFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	i := config.IntParam(new(int), "test_set_flag", 1, config.Default)
	flagsOn(fs)
	if err := fs.Parse([]string{"-set", "test_set_flag=9"}); err != nil {
		t.Fatalf("fs.Parse() failed with %s", err)
	}
	if err := config.Load(""); err != nil {
		t.Fatalf("Load() failed with %s", err)
	}
	if *i != 9 {
		t.Errorf("got %d, want 9", *i)
	}
}

func flagsOn(fs *flag.FlagSet) {
	old := flag.CommandLine
	flag.CommandLine = fs
	config.Flags("set", "no-config", "config-file", "list-config")
	flag.CommandLine = old
}
