package record

import "github.com/kbukum/tabkit/validation"

// Rules is the declarative field-formatting rule set applied to every record
// of a result.
type Rules struct {
	ToBool          []string `json:"toBool,omitempty" yaml:"toBool,omitempty" mapstructure:"toBool"`
	ToInt           []string `json:"toInt,omitempty" yaml:"toInt,omitempty" mapstructure:"toInt"`
	ToFloat         []string `json:"toFloat,omitempty" yaml:"toFloat,omitempty" mapstructure:"toFloat"`
	ToString        []string `json:"toString,omitempty" yaml:"toString,omitempty" mapstructure:"toString"`
	Comma2Array     []string `json:"comma2Array,omitempty" yaml:"comma2Array,omitempty" mapstructure:"comma2Array"`
	Semicolon2Array []string `json:"semicolon2Array,omitempty" yaml:"semicolon2Array,omitempty" mapstructure:"semicolon2Array"`
	// Keep restricts output to the listed fields. A nil Keep keeps every
	// field; a non-nil empty Keep keeps none.
	Keep       []string `json:"keep,omitempty" yaml:"keep" mapstructure:"keep"`
	AllowSpace bool     `json:"allowSpace,omitempty" yaml:"allowSpace,omitempty" mapstructure:"allowSpace"`
	AllowNull  bool     `json:"allowNull,omitempty" yaml:"allowNull,omitempty" mapstructure:"allowNull"`
}

// Validate rejects rule lists that name an empty field.
func (r Rules) Validate() error {
	v := validation.New()
	r.Check(v.Nested("format"))
	return v.Err()
}

// Check records rule list problems on v.
func (r Rules) Check(v *validation.Validator) {
	v.NoEmpty("toBool", r.ToBool).
		NoEmpty("toInt", r.ToInt).
		NoEmpty("toFloat", r.ToFloat).
		NoEmpty("toString", r.ToString).
		NoEmpty("comma2Array", r.Comma2Array).
		NoEmpty("semicolon2Array", r.Semicolon2Array).
		NoEmpty("keep", r.Keep)
}

// IsZero reports whether no rule is declared, in which case formatting only
// trims string values.
func (r Rules) IsZero() bool {
	return len(r.ToBool) == 0 && len(r.ToInt) == 0 && len(r.ToFloat) == 0 &&
		len(r.ToString) == 0 && len(r.Comma2Array) == 0 && len(r.Semicolon2Array) == 0 &&
		r.Keep == nil && !r.AllowSpace && !r.AllowNull
}

// compiled holds the rule lists as sets for per-field lookups.
type compiled struct {
	toBool, toInt, toFloat, toString map[string]struct{}
	comma, semicolon                 map[string]struct{}
	keep                             map[string]struct{}
	restrict                         bool
	allowSpace, allowNull            bool
}

func (r Rules) compile() compiled {
	return compiled{
		toBool:     toSet(r.ToBool),
		toInt:      toSet(r.ToInt),
		toFloat:    toSet(r.ToFloat),
		toString:   toSet(r.ToString),
		comma:      toSet(r.Comma2Array),
		semicolon:  toSet(r.Semicolon2Array),
		keep:       toSet(r.Keep),
		restrict:   r.Keep != nil,
		allowSpace: r.AllowSpace,
		allowNull:  r.AllowNull,
	}
}

func toSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
