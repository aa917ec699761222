package flags_test

import (
	"testing"

	"github.com/leftmike/rowset/flags"
)

func TestDefaultMatchesLookup(t *testing.T) {
	flgs := flags.Default()
	f, ok := flags.LookupFlag("pushdown_key_range")
	if !ok {
		t.Fatal("pushdown_key_range not found")
	}
	if !flgs.GetFlag(f) {
		t.Error("pushdown_key_range default should be true")
	}

	f, ok = flags.LookupFlag("pushdown_projection")
	if !ok {
		t.Fatal("pushdown_projection not found")
	}
	if !flgs.GetFlag(f) {
		t.Error("pushdown_projection default should be true")
	}
}

func TestLookupFlagIsCaseInsensitive(t *testing.T) {
	if _, ok := flags.LookupFlag("PUSHDOWN_KEY_RANGE"); !ok {
		t.Error("LookupFlag should be case-insensitive")
	}
}

func TestLookupFlagMissing(t *testing.T) {
	if _, ok := flags.LookupFlag("not_a_flag"); ok {
		t.Error("expected not_a_flag to be absent")
	}
}

func TestListFlagsCoversAllDefaults(t *testing.T) {
	seen := map[string]bool{}
	flags.ListFlags(func(nam string, f flags.Flag) {
		seen[nam] = true
	})
	for _, nam := range []string{"pushdown_key_range", "pushdown_projection"} {
		if !seen[nam] {
			t.Errorf("ListFlags did not include %s", nam)
		}
	}
}
