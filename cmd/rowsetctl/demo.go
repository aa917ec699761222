package main

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/rowset/internal/anchor"
	"github.com/leftmike/rowset/internal/cache"
	"github.com/leftmike/rowset/internal/memtracker"
	"github.com/leftmike/rowset/internal/rowset"
	"github.com/leftmike/rowset/schema"
)

// demoSchema is the fixed row shape every rowsetctl subcommand operates on: an int64 key
// column and a string value column, just enough to exercise inserts, mutations, deletes, and
// scans without requiring a schema DDL language this repository doesn't have.
func demoSchema() *schema.Schema {
	sch, err := schema.New("demo", []schema.Column{
		{ID: 1, Name: "id", Type: schema.Int64ColType, InKey: true},
		{ID: 2, Name: "value", Type: schema.StringColType},
	})
	if err != nil {
		log.WithError(err).Fatal("building demo schema")
	}
	return sch
}

func demoRow(id int64, value string) schema.Row {
	return schema.Row{schema.Int64Value(id), schema.StringValue(value)}
}

// newDemoMRS builds a MemRowSet and cache wired together the way a tablet server would, using
// the resolved throttle and cache-capacity knobs from the command line; the arena knobs are not
// applied, and the arena keeps its built-in chunk sizes. Each invocation gets its own
// uuid-tagged MRS id so successive bench/console runs never collide in a shared log file.
func newDemoMRS() (*rowset.MemRowSet, *cache.Cache, *anchor.Registry) {
	root := memtracker.NewRoot("rowsetctl")
	registry := anchor.NewRegistry()
	id := "demo-" + uuid.NewString()
	mrs := rowset.New(id, demoSchema(), root, registry, throttleMB, log.StandardLogger(), flgs)
	c := cache.New(cacheCapMB*1024*1024, root.NewChild("rowsetctl-cache"))
	return mrs, c, registry
}
