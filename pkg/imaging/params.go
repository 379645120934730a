package imaging

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
)

// Section names and parameter keys of an imaging file.
const (
	InitImgName     = "IMAGE-OI INITIAL IMAGE"
	PriorImgName    = "IMAGE-OI PRIOR IMAGE"
	InputParamName  = "IMAGE-OI INPUT PARAM"
	OutputParamName = "IMAGE-OI OUTPUT PARAM"

	// DataPrefix starts the EXTNAME of every OIFITS data table.
	DataPrefix = "OI_"

	InitImgKey  = "INIT_IMG"
	PriorImgKey = "RGL_PRIO"
	LastImgKey  = "LAST_IMG"
)

type valueKind int

const (
	kindAny valueKind = iota
	kindString
	kindEnum
	kindFloat
	kindBool
	kindInt
)

func (k valueKind) String() string {
	switch k {
	case kindString, kindEnum:
		return "string"
	case kindFloat:
		return "float"
	case kindBool:
		return "bool"
	case kindInt:
		return "int"
	}
	return "any"
}

type paramDef struct {
	key     string
	kind    valueKind
	value   any
	comment string
	seeded  bool
}

// paramDefs lists the known input parameters. Seeded entries form the
// default parameter set, in this order.
var paramDefs = [...]paramDef{
	{"TARGET", kindString, nil, "Identifier of target to select", true},
	{"WAVE_MIN", kindFloat, 0.1e-6, "[m] Minimum wavelength to select", true},
	{"WAVE_MAX", kindFloat, 50e-6, "[m] Maximum wavelength to select", true},
	{"USE_VIS", kindEnum, "ALL", "Complex visibility data to use if any", true},
	{"USE_VIS2", kindBool, true, "Use squared visibility data if any", true},
	{"USE_T3", kindEnum, "ALL", "Triple product data to use if any", true},
	{InitImgKey, kindString, nil, "HDUNAME of initial image", false},
	{"MAXITER", kindInt, 200, "Maximum number of iterations to run", true},
	{"RGL_NAME", kindString, "mem_prior", "Name of the regularization method", true},
	{"AUTO_WGT", kindBool, false, "Automatic regularization weight", true},
	{"RGL_WGT", kindFloat, 1e5, "Weight of the regularization", true},
	{PriorImgKey, kindString, nil, "HDUNAME of prior image", false},
	{"FLUX", kindFloat, 1.0, "Assumed total flux", true},
	{"FLUXERR", kindFloat, 0.0, "Error bar for total flux", true},
}

var useModes = []string{"NONE", "ALL", "AMP", "PHI"}

func lookupParam(key string) (paramDef, bool) {
	for _, s := range paramDefs {
		if s.key == key {
			return s, true
		}
	}
	return paramDef{}, false
}

// DefaultParams returns a new header holding the default input
// parameters. Undefined defaults carry a nil value.
func DefaultParams() *header.Header {
	h := &header.Header{}
	for _, s := range paramDefs {
		if s.seeded {
			h.SetCard(header.Card{Key: s.key, Value: s.value})
		}
	}
	return h
}

// ParamComment returns the standard comment for a parameter key, or ""
// for keys without one.
func ParamComment(key string) string {
	s, _ := lookupParam(key)
	return s.comment
}

var (
	reservedKeys = map[string]bool{
		"XTENSION": true, "BITPIX": true, "NAXIS": true,
		"PCOUNT": true, "GCOUNT": true, "TFIELDS": true, "THEAP": true,
		"EXTNAME": true, "EXTVER": true, "HDUNAME": true, "HDUVER": true,
		"BSCALE": true, "BZERO": true, "BLANK": true, "END": true,
	}
	axisKey = regexp.MustCompile(`^NAXIS[0-9]+$`)
)

// IsReserved reports whether key is a structural FITS keyword that is
// never treated as a parameter or descriptive metadata.
func IsReserved(key string) bool {
	return reservedKeys[key] || axisKey.MatchString(key)
}

// checkParam validates key and coerces value to the type of a known
// parameter.
func checkParam(key string, value any) (any, error) {
	if err := errors.ValidateKeyword(key); err != nil {
		return nil, err
	}
	if IsReserved(key) || header.IsAppendKey(key) {
		return nil, errors.New(errors.ErrCodeInvalidKeyword, "%s is not a parameter keyword", key)
	}

	switch value.(type) {
	case nil, string, bool, int, float64:
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unsupported value type %T", key, value)
	}

	s, ok := lookupParam(key)
	if !ok || value == nil {
		return value, nil
	}
	switch s.kind {
	case kindString:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case kindEnum:
		if v, ok := value.(string); ok {
			v = strings.ToUpper(v)
			for _, m := range useModes {
				if v == m {
					return v, nil
				}
			}
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"%s must be one of %s, got %q", key, strings.Join(useModes, ", "), v)
		}
	case kindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
	case kindBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case kindInt:
		if v, ok := value.(int); ok {
			return v, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"%s takes a %s value, got %v (%T)", key, s.kind, value, value)
}

// applyComments sets the standard comment of every parameter lacking one.
func applyComments(h *header.Header) {
	for _, key := range h.Keys() {
		if h.Comment(key) == "" {
			if c := ParamComment(key); c != "" {
				h.SetComment(key, c)
			}
		}
	}
}

// persisted returns the cards of params that are written to a file:
// undefined values are dropped.
func persisted(params *header.Header) *header.Header {
	return params.Filter(func(c header.Card) bool {
		return c.Value != nil || header.IsAppendKey(c.Key)
	})
}

// restoreUndefined reinserts undefined default parameters missing from
// params, each ahead of the first default that follows it in the
// default table.
func restoreUndefined(params *header.Header) *header.Header {
	var missing []string
	for _, s := range paramDefs {
		if s.seeded && s.value == nil && !params.Has(s.key) {
			missing = append(missing, s.key)
		}
	}
	if len(missing) == 0 {
		return params
	}

	rank := func(key string) int {
		for i, s := range paramDefs {
			if s.key == key && s.seeded {
				return i
			}
		}
		return -1
	}
	out := &header.Header{}
	flush := func(before int) {
		for len(missing) > 0 && (before < 0 || rank(missing[0]) < before) {
			out.SetCard(header.Card{Key: missing[0], Comment: ParamComment(missing[0])})
			missing = missing[1:]
		}
	}
	for _, c := range params.Cards() {
		if r := rank(c.Key); r >= 0 {
			flush(r)
		}
		if header.IsAppendKey(c.Key) {
			out.Add(c.Key, c.Value, c.Comment)
		} else {
			out.SetCard(c)
		}
	}
	flush(-1)
	return out
}

// FormatValue renders a parameter value for listings.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "undefined"
	case bool:
		if v {
			return "T"
		}
		return "F"
	case float64:
		return fmt.Sprintf("%g", v)
	case string:
		return v
	}
	return fmt.Sprint(v)
}
