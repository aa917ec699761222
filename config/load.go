package config

import (
	"os"

	"github.com/hashicorp/hcl"
)

// loadHCL reads configFile, decodes it as HCL, and applies each top-level key to the matching
// registered parameter via its typed SetValue.
func (cfg *Config) loadHCL(configFile string) error {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}

	var decoded map[string]interface{}
	if err := hcl.Decode(&decoded, string(b)); err != nil {
		return err
	}

	for name, val := range decoded {
		if err := cfg.setParamValue(name, val, NoConfigFile); err != nil {
			return err
		}
	}
	return nil
}
