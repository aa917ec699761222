package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadHCL(t *testing.T) {
	cfg := New()
	b := cfg.boolParam(new(bool), "bool_var", false, Default)
	i := cfg.intParam(new(int), "int_var", 1, Default)
	s := cfg.stringParam(new(string), "string_var", "dflt", Default)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.hcl")
	contents := `
bool_var = true
int_var = 42
string_var = "from file"
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile() failed with %s", err)
	}

	if err := cfg.loadHCL(path); err != nil {
		t.Fatalf("loadHCL() failed with %s", err)
	}
	if *b != true {
		t.Errorf("bool_var: got %v, want true", *b)
	}
	if *i != 42 {
		t.Errorf("int_var: got %d, want 42", *i)
	}
	if *s != "from file" {
		t.Errorf("string_var: got %s, want \"from file\"", *s)
	}
}

func TestLoadHCLUnknownParam(t *testing.T) {
	cfg := New()
	cfg.intParam(new(int), "int_var", 1, Default)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.hcl")
	if err := os.WriteFile(path, []byte(`not_a_param = 1`), 0644); err != nil {
		t.Fatalf("WriteFile() failed with %s", err)
	}

	if err := cfg.loadHCL(path); err == nil {
		t.Fatal("loadHCL() of an unknown param did not fail")
	}
}

func TestLoadHCLNoConfigFileOption(t *testing.T) {
	cfg := New()
	i := cfg.intParam(new(int), "int_var", 1, NoConfigFile)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.hcl")
	if err := os.WriteFile(path, []byte(`int_var = 2`), 0644); err != nil {
		t.Fatalf("WriteFile() failed with %s", err)
	}

	if err := cfg.loadHCL(path); err == nil {
		t.Fatal("loadHCL() of a NoConfigFile param did not fail")
	}
	if *i != 1 {
		t.Errorf("got %d, want unchanged 1", *i)
	}
}

func TestConfigFileThenSetOverride(t *testing.T) {
	cfg := New()
	i := cfg.intParam(new(int), "int_var", 1, Default)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.hcl")
	if err := os.WriteFile(path, []byte(`int_var = 2`), 0644); err != nil {
		t.Fatalf("WriteFile() failed with %s", err)
	}

	cfg.configFile = path
	if err := cfg.Set("int_var=3"); err != nil {
		t.Fatalf("Set() failed with %s", err)
	}
	if err := cfg.load(""); err != nil {
		t.Fatalf("load() failed with %s", err)
	}
	if *i != 3 {
		t.Errorf("got %d, want 3 (command-line override wins)", *i)
	}
}
