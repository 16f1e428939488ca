package loaders

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

type panelFile struct {
	Values map[string]float64 `toml:"values"`
}

// PanelLoader reads the [values] table of a TOML file into a name to value map.
type PanelLoader struct{}

func (pl *PanelLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values, err := ParsePanelValues(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypePanel,
		Name:     "panel",
		FullPath: path,
		DataSize: uint64(len(values)),
		Data:     values,
	}, nil
}

func ParsePanelValues(data []byte) (map[string]float64, error) {
	var pf panelFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	if pf.Values == nil {
		pf.Values = make(map[string]float64)
	}
	return pf.Values, nil
}

func (pl *PanelLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return fmt.Errorf("panel loader: nil resource")
	}
	res.Data = nil
	return nil
}
