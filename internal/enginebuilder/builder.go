// Package enginebuilder picks a rules-engine backend by name.
package enginebuilder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/park285/cheese-board/internal/engine"
	"github.com/park285/cheese-board/internal/engine/corentings"
	"github.com/park285/cheese-board/internal/engine/notnil"
)

// Default is used when no backend is configured.
const Default = corentings.Name

var backends = map[string]func() engine.PositionEngine{
	corentings.Name: func() engine.PositionEngine { return corentings.New() },
	notnil.Name:     func() engine.PositionEngine { return notnil.New() },
}

func New(name string) (engine.PositionEngine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}
	ctor, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists the registered backends in sorted order.
func Names() []string {
	out := make([]string, 0, len(backends))
	for n := range backends {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
