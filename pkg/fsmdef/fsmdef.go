package fsmdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/easystates/pkg/statemachine"
)

// Handlers maps handler names used in documents to their implementations.
type Handlers map[string]statemachine.Handler

// Document is the YAML shape of a machine definition.
type Document struct {
	Name        string               `yaml:"name"`
	States      []string             `yaml:"states"`
	Initial     string               `yaml:"initial"`
	Final       []string             `yaml:"final"`
	Transitions []TransitionDocument `yaml:"transitions"`
}

type TransitionDocument struct {
	Name    string `yaml:"name"`
	From    string `yaml:"from"`
	Event   string `yaml:"event"`
	To      string `yaml:"to"`
	Handler string `yaml:"handler,omitempty"`
}

// Parse decodes a YAML document into a definition.
func Parse(data []byte, handlers Handlers) (statemachine.Definition, error) {
	return Decode(bytes.NewReader(data), handlers)
}

// Load reads and decodes the YAML document at path.
func Load(path string, handlers Handlers) (statemachine.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return statemachine.Definition{}, errors.Join(ErrReadFile, err)
	}
	return Parse(data, handlers)
}

// Decode reads one YAML document from r. Unknown fields are rejected.
func Decode(r io.Reader, handlers Handlers) (statemachine.Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return statemachine.Definition{}, ErrEmptyDocument
		}
		return statemachine.Definition{}, errors.Join(ErrDecode, err)
	}
	return doc.Definition(handlers)
}

// Definition converts the document, resolving handler names against handlers.
func (d Document) Definition(handlers Handlers) (statemachine.Definition, error) {
	def := statemachine.Definition{
		Name:        d.Name,
		States:      states(d.States),
		Initial:     statemachine.NewState(d.Initial),
		Final:       states(d.Final),
		Transitions: make([]statemachine.Transition, 0, len(d.Transitions)),
	}

	for i, td := range d.Transitions {
		t := statemachine.Transition{
			Name:   td.Name,
			Source: statemachine.NewState(td.From),
			Target: statemachine.NewState(td.To),
			Kind:   statemachine.EventKind(td.Event),
		}
		if td.Handler != "" {
			h, ok := handlers[td.Handler]
			if !ok || h == nil {
				return statemachine.Definition{}, fmt.Errorf("transition[%d] %q: %w: %q", i, td.Name, ErrUnknownHandler, td.Handler)
			}
			t.Handler = h
		}
		def.Transitions = append(def.Transitions, t)
	}
	return def, nil
}

func states(names []string) []statemachine.State {
	out := make([]statemachine.State, 0, len(names))
	for _, n := range names {
		out = append(out, statemachine.NewState(n))
	}
	return out
}
