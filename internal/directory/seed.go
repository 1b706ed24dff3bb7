package directory

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"example.com/activitysignup/internal/domain"
)

//go:embed seed.toml
var defaultSeed []byte

type seedFile struct {
	Activities []seedActivity `toml:"activity"`
}

type seedActivity struct {
	Name            string   `toml:"name"`
	Description     string   `toml:"description"`
	Schedule        string   `toml:"schedule"`
	MaxParticipants int      `toml:"max_participants"`
	Participants    []string `toml:"participants"`
}

// LoadSeed reads activities from path, or from the embedded default seed when path is empty.
func LoadSeed(path string) ([]domain.Activity, error) {
	if path == "" {
		return ParseSeed(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	activities, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return activities, nil
}

// ParseSeed decodes a TOML seed document. Unknown keys are rejected.
func ParseSeed(data []byte) ([]domain.Activity, error) {
	var file seedFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	out := make([]domain.Activity, 0, len(file.Activities))
	for _, a := range file.Activities {
		out = append(out, domain.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    a.Participants,
		})
	}
	return out, nil
}
