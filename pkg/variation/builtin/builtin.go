// Package builtin assembles the stock variation modules into a
// registry.
package builtin

import (
	"fmt"
	"log"

	"github.com/variamidi/variamidi/pkg/variation"
	"github.com/variamidi/variamidi/pkg/variation/groove"
	"github.com/variamidi/variamidi/pkg/variation/markov"
)

// Discover registers every stock module and returns the registry.
// Modules register even when not ready so listings can report their
// state. A name conflict is logged and the first registration wins.
func Discover(grooveCfg groove.Config) (*variation.Registry, error) {
	r := variation.NewRegistry()
	modules := []variation.Module{
		markov.New(),
		groove.New(grooveCfg),
	}
	for _, m := range modules {
		if err := r.Register(m); err != nil {
			log.Printf("module registration: %v", err)
		}
	}
	if r.Len() == 0 {
		return nil, fmt.Errorf("no variation modules registered")
	}
	return r, nil
}
