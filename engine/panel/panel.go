// Package panel binds named scalar parameters to callbacks. Values are
// clamped to the range given at bind time; a callback only fires when the
// clamped value actually changes.
package panel

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

type Parameter struct {
	Name     string
	Min      float64
	Max      float64
	Value    float64
	onChange func(float64)
}

// FileSource loads a panel values file.
type FileSource interface {
	LoadFile(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
}

// Panel is owned by the frame loop and is not safe for concurrent use.
type Panel struct {
	params map[string]*Parameter
}

func New() *Panel {
	return &Panel{params: make(map[string]*Parameter)}
}

// Bind registers a parameter. onChange is invoked once with the clamped
// initial value so the bound state starts in sync.
func (p *Panel) Bind(name string, min, max, initial float64, onChange func(float64)) error {
	if name == "" {
		return fmt.Errorf("%w: parameter without a name", core.ErrInvalidConfig)
	}
	if min > max {
		return fmt.Errorf("%w: parameter '%s' range [%v, %v] is empty", core.ErrInvalidConfig, name, min, max)
	}
	if _, ok := p.params[name]; ok {
		return fmt.Errorf("parameter '%s' is already bound", name)
	}
	param := &Parameter{
		Name:     name,
		Min:      min,
		Max:      max,
		Value:    math.Clamp(initial, min, max),
		onChange: onChange,
	}
	p.params[name] = param
	if onChange != nil {
		onChange(param.Value)
	}
	return nil
}

// Set clamps v into the parameter's range and stores it. It returns the
// stored value.
func (p *Panel) Set(name string, v float64) (float64, error) {
	param, ok := p.params[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter '%s'", name)
	}
	v = math.Clamp(v, param.Min, param.Max)
	if v == param.Value {
		return v, nil
	}
	param.Value = v
	core.LogDebug("panel: %s = %v", name, v)
	if param.onChange != nil {
		param.onChange(v)
	}
	return v, nil
}

func (p *Panel) Get(name string) (float64, bool) {
	param, ok := p.params[name]
	if !ok {
		return 0, false
	}
	return param.Value, true
}

// Apply sets every known parameter in values and returns how many changed.
// Unknown names are ignored.
func (p *Panel) Apply(values map[string]float64) int {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := 0
	for _, name := range names {
		param, ok := p.params[name]
		if !ok {
			core.LogDebug("panel: ignoring unknown parameter '%s'", name)
			continue
		}
		before := param.Value
		if v, _ := p.Set(name, values[name]); v != before {
			changed++
		}
	}
	return changed
}

// Load reads a values file through src and applies it.
func (p *Panel) Load(src FileSource, path string) (int, error) {
	res, err := src.LoadFile(path, metadata.ResourceTypePanel, nil)
	if err != nil {
		return 0, err
	}
	values, ok := res.Data.(map[string]float64)
	if !ok {
		return 0, fmt.Errorf("panel file '%s' holds %T", path, res.Data)
	}
	return p.Apply(values), nil
}

// Names lists the bound parameters in alphabetical order.
func (p *Panel) Names() []string {
	names := make([]string, 0, len(p.params))
	for name := range p.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
