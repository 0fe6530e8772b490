// Package schema validates Node API resources against structural CUE
// schemas. The Connection API's /transportfile endpoint is deliberately
// never probed here: a 404 from it is legal when master_enable is false.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/nmoscheck/internal/nmos"
)

//go:embed resources.cue
var schemaSource string

// Validator checks decoded resource objects against the embedded schemas.
type Validator struct {
	ctx      *cue.Context
	sender   cue.Value
	receiver cue.Value
	device   cue.Value
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	root := ctx.CompileString(schemaSource, cue.Filename("resources.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schemas: %w", err)
	}

	v := &Validator{
		ctx:      ctx,
		sender:   root.LookupPath(cue.ParsePath("#Sender")),
		receiver: root.LookupPath(cue.ParsePath("#Receiver")),
		device:   root.LookupPath(cue.ParsePath("#Device")),
	}
	for name, val := range map[string]cue.Value{
		"#Sender": v.sender, "#Receiver": v.receiver, "#Device": v.device,
	} {
		if !val.Exists() {
			return nil, fmt.Errorf("schema %s not found", name)
		}
	}

	return v, nil
}

// ValidateResource checks a Sender or Receiver object.
func (v *Validator) ValidateResource(kind nmos.ResourceKind, resource nmos.Resource) error {
	schemaValue := v.receiver
	if kind == nmos.Senders {
		schemaValue = v.sender
	}
	return v.validate(schemaValue, map[string]any(resource))
}

// ValidateDevice checks a Device object.
func (v *Validator) ValidateDevice(device map[string]any) error {
	return v.validate(v.device, device)
}

func (v *Validator) validate(schemaValue cue.Value, data map[string]any) error {
	value := v.ctx.Encode(data)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode resource: %w", err)
	}

	unified := schemaValue.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
