package workflow

import (
	"fmt"
	"os"

	"github.com/aretw0/snk/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadProfileSettings reads a profile config.yaml and decodes the keys snk knows
// about. Unknown keys are preserved in Settings.Extra.
func LoadProfileSettings(path string) (domain.ProfileSettings, error) {
	var settings domain.ProfileSettings

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read profile config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return settings, fmt.Errorf("failed to parse profile config: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return settings, err
	}
	if err := decoder.Decode(raw); err != nil {
		return settings, fmt.Errorf("failed to decode profile config: %w", err)
	}
	return settings, nil
}
