package questions

import (
	"fmt"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadPools reads tier pools from a YAML file. Every tier is a list whose
// items are either a plain question string or a mapping with text, keywords
// and coding keys.
func LoadPools(path string) (Pools, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pools{}, fmt.Errorf("reading question pools %s: %w", path, err)
	}

	return ParsePools(data)
}

// ParsePools decodes YAML content into pools and validates them.
func ParsePools(data []byte) (Pools, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Pools{}, fmt.Errorf("parsing question pools yaml: %w", err)
	}

	var pools Pools
	cfg := &mapstructure.DecoderConfig{
		DecodeHook:       stringToEntryHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &pools,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return Pools{}, err
	}

	if err := decoder.Decode(raw); err != nil {
		return Pools{}, fmt.Errorf("decoding question pools: %w", err)
	}

	if err := pools.Validate(PerTier); err != nil {
		return Pools{}, err
	}

	return pools, nil
}

var entryType = reflect.TypeOf(Entry{})

func stringToEntryHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != entryType {
		return data, nil
	}
	return map[string]any{"text": data}, nil
}
