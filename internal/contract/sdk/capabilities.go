package sdk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

// Capability is a chain feature a contract depends on. A host advertises
// the capabilities it supports; a contract whose requirements are not all
// supported is never executed.
type Capability string

const (
	CapIterator    Capability = "iterator"
	CapStaking     Capability = "staking"
	CapStargate    Capability = "stargate"
	CapCosmWasm1_1 Capability = "cosmwasm_1_1"
	CapCosmWasm1_2 Capability = "cosmwasm_1_2"

	// CapBabylon marks contracts that issue Babylon custom queries.
	CapBabylon Capability = Capability(bindings.RequiredCapability)
)

// AllCapabilities returns every capability this runtime knows about.
func AllCapabilities() []Capability {
	return []Capability{
		CapIterator,
		CapStaking,
		CapStargate,
		CapCosmWasm1_1,
		CapCosmWasm1_2,
		CapBabylon,
	}
}

// DefaultHostCapabilities is what a Babylon host supports out of the box.
func DefaultHostCapabilities() CapabilitySet {
	return NewCapabilitySet([]Capability{CapIterator, CapStaking, CapBabylon})
}

var validCapabilities = func() map[Capability]bool {
	m := make(map[Capability]bool)
	for _, c := range AllCapabilities() {
		m[c] = true
	}
	return m
}()

func (c Capability) IsValid() bool {
	return validCapabilities[c]
}

func (c Capability) String() string {
	return string(c)
}

// CapabilitySet is a set of capabilities for efficient lookup.
type CapabilitySet map[Capability]bool

func NewCapabilitySet(caps []Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// Missing returns the members of required that s lacks, sorted.
func (s CapabilitySet) Missing(required CapabilitySet) []Capability {
	var missing []Capability
	for c := range required {
		if !s[c] {
			missing = append(missing, c)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// ToSlice returns the capabilities sorted by name.
func (s CapabilitySet) ToSlice() []Capability {
	caps := make([]Capability, 0, len(s))
	for c := range s {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// ParseCapabilities parses names such as those in a comma-separated
// config value. Blank entries are skipped.
func ParseCapabilities(names []string) (CapabilitySet, error) {
	set := make(CapabilitySet)
	var invalid []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c := Capability(name)
		if !c.IsValid() {
			invalid = append(invalid, name)
			continue
		}
		set[c] = true
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCapability, strings.Join(invalid, ", "))
	}
	return set, nil
}
