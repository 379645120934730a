package model

import (
	"strings"

	"github.com/spf13/pflag"
)

// TypeValue is a pflag.Value restricting a flag to the model types.
type TypeValue struct {
	target *string
}

var _ pflag.Value = TypeValue{}

// NewTypeValue returns a flag value that stores into target, which is
// set to def.
func NewTypeValue(target *string, def string) TypeValue {
	*target = def
	return TypeValue{target: target}
}

func (v TypeValue) String() string {
	if v.target == nil {
		return ""
	}
	return *v.target
}

func (v TypeValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if err := ValidateType(s); err != nil {
		return err
	}
	*v.target = s
	return nil
}

func (v TypeValue) Type() string { return "type" }
