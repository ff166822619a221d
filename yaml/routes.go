package yaml

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/fwojciec/knowcore"
	"gopkg.in/yaml.v3"
)

type routesFile struct {
	Routes []struct {
		Domain     string `yaml:"domain"`
		PathPrefix string `yaml:"path_prefix"`
		Adapter    string `yaml:"adapter"`
	} `yaml:"routes"`
}

// ParseRoutes decodes an ordered route list. Every route must name an
// adapter.
func ParseRoutes(data []byte) ([]knowcore.Route, error) {
	var f routesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, knowcore.Errorf(knowcore.EINVALID, "routes: %v", err)
	}
	routes := make([]knowcore.Route, 0, len(f.Routes))
	for i, r := range f.Routes {
		if strings.TrimSpace(r.Adapter) == "" {
			return nil, knowcore.Errorf(knowcore.EINVALID, "route %d: adapter required", i)
		}
		routes = append(routes, knowcore.Route{
			Domain:     strings.TrimSpace(r.Domain),
			PathPrefix: strings.TrimSpace(r.PathPrefix),
			Adapter:    strings.TrimSpace(r.Adapter),
		})
	}
	return routes, nil
}

// LoadRoutes reads the route list at path.
// Returns ENOTFOUND if the file does not exist.
func LoadRoutes(path string) ([]knowcore.Route, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, knowcore.Errorf(knowcore.ENOTFOUND, "routes file %q not found", path)
	} else if err != nil {
		return nil, err
	}
	return ParseRoutes(data)
}
