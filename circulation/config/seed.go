package config

import (
	"os"

	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Seed is the startup content of the policy table. Items are only loaded by the memory driver,
// postgres gets its catalog from migrations.
type Seed struct {
	Policies []model.Policy `yaml:"policies" validate:"dive"`
	Items    []model.Item   `yaml:"items" validate:"dive"`
}

func LoadSeed(path string) (Seed, error) {
	var seed Seed
	if path == "" {
		return seed, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, errors.Wrap(err, "read seed file")
	}
	if err = yaml.Unmarshal(data, &seed); err != nil {
		return seed, errors.Wrap(err, "yaml.Unmarshal")
	}
	if err = validator.New().Struct(seed); err != nil {
		return seed, errors.Wrap(err, "validate seed")
	}
	seen := make(map[string]struct{}, len(seed.Policies))
	for _, p := range seed.Policies {
		if _, ok := seen[p.Category]; ok {
			return seed, errors.Errorf("duplicate policy %q", p.Category)
		}
		seen[p.Category] = struct{}{}
	}
	return seed, nil
}
