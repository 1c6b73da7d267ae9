package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
)

//go:embed resources.yaml
var defaultResources []byte

// LoadResources loads the resource definitions from path, or the built-in ones when
// path is empty.
func LoadResources(path string) (*listing.Definitions, error) {
	data := defaultResources
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read resources file: %w", err)
		}
		data = b
	}
	return listing.LoadDefinitions(data)
}
