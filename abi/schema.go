package abi

import (
	"golang.org/x/xerrors"
)

// Endpoint is the typed signature of one contract endpoint: its ordered
// argument types and its ordered return types.
type Endpoint struct {
	Name    string
	Inputs  []*Type
	Outputs []*Type
}

// Schema is the parsed ABI description of a contract: the endpoints it
// exposes and the user-defined struct and enum types they reference.
// Schemas arrive here already parsed - reading the published description
// file is the responsibility of the surrounding tooling - and are loaded
// once, living for the process duration.
type Schema struct {
	Name      string
	endpoints map[string]Endpoint
	types     map[string]*Type
}

// NewSchema builds a schema from a contract name and its endpoints.
func NewSchema(name string, endpoints ...Endpoint) *Schema {
	s := &Schema{
		Name:      name,
		endpoints: make(map[string]Endpoint),
		types:     make(map[string]*Type),
	}
	for _, e := range endpoints {
		s.endpoints[e.Name] = e
	}
	return s
}

// DefineType registers a named struct or enum type so it can be looked
// up by the tooling that resolves type references.
func (s *Schema) DefineType(t *Type) *Schema {
	if t.Name != "" {
		s.types[t.Name] = t
	}
	return s
}

// Endpoint returns the signature of the named endpoint.
func (s *Schema) Endpoint(name string) (Endpoint, error) {
	e, ok := s.endpoints[name]
	if !ok {
		return Endpoint{}, xerrors.Errorf("contract %s has no endpoint %s",
			s.Name, name)
	}
	return e, nil
}

// Type returns the named user-defined type.
func (s *Schema) Type(name string) (*Type, error) {
	t, ok := s.types[name]
	if !ok {
		return nil, xerrors.Errorf("contract %s defines no type %s",
			s.Name, name)
	}
	return t, nil
}
