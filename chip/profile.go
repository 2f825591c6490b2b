package chip

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Profile adds DRAM parameter tables to a registered chip.
//
// A profile file holds one or more YAML documents:
//
//	chip: D1/F133/T113
//	default: my-board
//	types:
//	  my-board: [792, 3, 0x007b7bfb, ...]
type Profile struct {
	// Chip is matched case-insensitively against Descriptor.Name
	Chip string `yaml:"chip"`

	// Default optionally replaces DRAMParams.Default
	Default string `yaml:"default,omitempty"`

	// Types are merged into DRAMParams.Types, overriding entries of the same name
	Types map[string][]uint32 `yaml:"types"`
}

// LoadDRAMProfiles decodes every YAML document in r.
func LoadDRAMProfiles(r io.Reader) ([]Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var profiles []Profile
	for i := 0; ; i++ {
		var p Profile
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dram profile %d: %w", i, err)
		}
		if p.Chip == "" {
			return nil, fmt.Errorf("dram profile %d: missing chip", i)
		}
		if len(p.Types) == 0 {
			return nil, fmt.Errorf("dram profile %d (%s): no types", i, p.Chip)
		}
		for name, words := range p.Types {
			if len(words) == 0 {
				return nil, fmt.Errorf("dram profile %d (%s): type %q has no parameters", i, p.Chip, name)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// ApplyProfiles merges profiles into the registry. Descriptors are copied
// before being changed, so values returned by earlier lookups keep their
// original tables.
func ApplyProfiles(profiles []Profile) error {
	for _, p := range profiles {
		d, ok := LookupName(p.Chip)
		if !ok {
			return fmt.Errorf("dram profile: unknown chip %q", p.Chip)
		}
		if err := d.Require(CapDDR); err != nil {
			return fmt.Errorf("dram profile: %w", err)
		}

		nd := d.clone()
		for name, words := range p.Types {
			nd.DRAM.Types[name] = append([]uint32(nil), words...)
		}
		if p.Default != "" {
			if _, ok := nd.DRAM.Types[p.Default]; !ok {
				return fmt.Errorf("dram profile (%s): default %q is not a known type", p.Chip, p.Default)
			}
			nd.DRAM.Default = p.Default
		}
		replace(nd)
	}
	return nil
}
