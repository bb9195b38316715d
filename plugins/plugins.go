// Package plugins wires the built-in plugin set into a registry.
package plugins

import (
	"github.com/rohanthewiz/serr"

	"plugyard/plugin"
	"plugyard/plugins/imagesearch"
	"plugyard/plugins/weather"
	"plugyard/plugins/webcrawler"
	"plugyard/registry"
)

// Default builds a registry with every built-in plugin registered in a
// stable order.
func Default(log plugin.Logger, store plugin.Store) (*registry.Registry, error) {
	reg := registry.New(log, store)
	for _, exp := range []*plugin.Export{
		weather.New(),
		webcrawler.New(),
		imagesearch.New(),
	} {
		if err := reg.Register(exp); err != nil {
			return nil, serr.Wrap(err, "failed to register built-in plugin", "plugin", exp.Manifest.Identifier)
		}
	}
	return reg, nil
}
