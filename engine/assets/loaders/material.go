package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

// MaterialLoader reads .amt material files: one "key = value" pair per line.
type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mCfg, err := ParseAMT(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeMaterial,
		Name:     mCfg.Name,
		FullPath: path,
		DataSize: 1,
		Data:     mCfg,
	}, nil
}

// ParseAMT decodes and validates a material description.
func ParseAMT(r io.Reader) (*metadata.MaterialConfig, error) {
	scanner := bufio.NewScanner(r)
	materialConfig := &metadata.MaterialConfig{
		Shading:       metadata.ShadingLambert,
		DiffuseColour: math.NewVec4(1, 1, 1, 1),
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		// Split key-value pairs by the first "=" sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			core.LogWarn("Skipping invalid material line: %s", line)
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Parse each field based on the key
		switch key {
		case "name":
			materialConfig.Name = value
		case "shading":
			switch strings.ToLower(value) {
			case "lambert":
				materialConfig.Shading = metadata.ShadingLambert
			case "unlit":
				materialConfig.Shading = metadata.ShadingUnlit
			default:
				return nil, fmt.Errorf("unknown shading model: %s", value)
			}
		case "diffuse_colour":
			colour, err := parseColour(value)
			if err != nil {
				return nil, err
			}
			materialConfig.DiffuseColour = colour
		case "double_sided":
			doubleSided, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid double_sided value: %s", value)
			}
			materialConfig.DoubleSided = doubleSided
		default:
			core.LogWarn("Unknown key '%s' found in material. Skipping...", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	// Perform validation
	if err := validateMaterial(materialConfig); err != nil {
		return nil, err
	}
	return materialConfig, nil
}

// parseColour accepts either four floats in [0,1] or a hex colour such as 0xaaaaaa.
func parseColour(value string) (math.Vec4, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "#") {
		hex := strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "#")
		rgb, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return math.Vec4{}, fmt.Errorf("invalid hex diffuse_colour: %s", value)
		}
		return math.NewVec4(
			float32((rgb>>16)&0xff)/255,
			float32((rgb>>8)&0xff)/255,
			float32(rgb&0xff)/255,
			1,
		), nil
	}

	colourValues := strings.Fields(value)
	if len(colourValues) != 4 {
		return math.Vec4{}, fmt.Errorf("invalid diffuse_colour, expected 4 values: %s", value)
	}
	var c [4]float32
	for i, v := range colourValues {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return math.Vec4{}, fmt.Errorf("invalid diffuse_colour value: %s", v)
		}
		c[i] = float32(f)
	}
	return math.NewVec4(c[0], c[1], c[2], c[3]), nil
}

func validateMaterial(material *metadata.MaterialConfig) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}

	// Check that DiffuseColour values are within [0.0, 1.0] range
	if !isValidVec4(material.DiffuseColour) {
		return fmt.Errorf("diffuse_colour values must be between 0.0 and 1.0")
	}

	return nil
}

// Helper function to validate Vec4 fields (must be between 0.0 and 1.0)
func isValidVec4(v math.Vec4) bool {
	return inRange(v.X) && inRange(v.Y) && inRange(v.Z) && inRange(v.W)
}

// Check if a float32 value is within [0.0, 1.0]
func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}

func (ml *MaterialLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return fmt.Errorf("material loader: nil resource")
	}
	res.Data = nil
	return nil
}
