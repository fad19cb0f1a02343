// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its enablement and
// route registration:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry of features and loads the enabled ones, in registration
// order, with LoadAll.
package loader
