package generation

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Profile holds the completion settings used for one content type.
type Profile struct {
	Model          string  `yaml:"model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	System         string  `yaml:"system"`
}

func (p Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type Profiles map[ContentType]Profile

// MaxTimeout is the longest per-attempt timeout across all content types.
func (ps Profiles) MaxTimeout() time.Duration {
	var max time.Duration
	for _, p := range ps {
		if t := p.Timeout(); t > max {
			max = t
		}
	}
	return max
}

// LoadProfiles reads the embedded profile table and checks that every
// content type has a usable entry.
func LoadProfiles() (Profiles, error) {
	return parseProfiles(profilesYAML)
}

func parseProfiles(data []byte) (Profiles, error) {
	var out Profiles
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse generation profiles: %w", err)
	}
	for _, ct := range ContentTypes() {
		p, ok := out[ct]
		if !ok {
			return nil, fmt.Errorf("generation profile for %s is missing", ct)
		}
		if p.Model == "" || p.TimeoutSeconds <= 0 || p.MaxTokens <= 0 {
			return nil, fmt.Errorf("generation profile for %s is incomplete", ct)
		}
	}
	return out, nil
}
