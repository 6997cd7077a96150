package sport

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedSport is returned when a sport has no registered profile.
var ErrUnsupportedSport = errors.New("unsupported sport")

// Registry is the immutable catalog of sport profiles. It is built once at startup
// and is safe for concurrent reads.
type Registry struct {
	profiles map[string]*Profile
	names    []string
}

// NewRegistry builds a registry from the given profiles. When two profiles share a
// name the later one wins, so custom profiles can override the defaults.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile, len(profiles))}

	for i := range profiles {
		p := profiles[i].Clone()
		p.Name = NormalizeName(p.Name)
		if p.Rule == "" {
			p.Rule = RuleGeneral
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.profiles[p.Name] = &p
	}

	r.names = make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	return r, nil
}

// NewDefaultRegistry builds a registry from the built-in catalog plus any extra
// profiles, which take precedence over built-ins of the same name.
func NewDefaultRegistry(extra ...Profile) (*Registry, error) {
	defaults, err := DefaultProfiles()
	if err != nil {
		return nil, err
	}
	return NewRegistry(append(defaults, extra...)...)
}

// ConfigFor returns a copy of the profile for a sport.
func (r *Registry) ConfigFor(name string) (*Profile, error) {
	p, ok := r.profiles[NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSport, name)
	}
	cp := p.Clone()
	return &cp, nil
}

// Names returns the registered sport names, sorted alphabetically.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Profiles returns copies of all profiles sorted by name.
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, 0, len(r.names))
	for _, name := range r.names {
		cp := r.profiles[name].Clone()
		out = append(out, &cp)
	}
	return out
}

// Count returns the number of registered sports.
func (r *Registry) Count() int {
	return len(r.profiles)
}
