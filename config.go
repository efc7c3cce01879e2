package surreal

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Auth carries the credentials for SignIn and SignUp. Zero fields are
// omitted from the request, so the same struct covers root, namespace,
// database and record-access authentication.
type Auth struct {
	Namespace string `mapstructure:"NS,omitempty"`
	Database  string `mapstructure:"DB,omitempty"`
	// Scope is the legacy (pre-2.x) record-access field.
	Scope string `mapstructure:"SC,omitempty"`
	// Access is the access method name, replacing Scope since 2.x.
	Access   string `mapstructure:"AC,omitempty"`
	Username string `mapstructure:"user,omitempty"`
	Password string `mapstructure:"pass,omitempty"`

	// Vars carries additional access-method parameters verbatim, e.g.
	// the fields a record-access SIGNUP clause expects.
	Vars map[string]any `mapstructure:"-"`
}

// vars renders the credentials into the parameter map the signin/signup
// methods expect.
func (a *Auth) vars() (map[string]any, error) {
	out := make(map[string]any)
	if err := mapstructure.Decode(a, &out); err != nil {
		return nil, fmt.Errorf("rendering credentials: %w", err)
	}
	for k, v := range a.Vars {
		out[k] = v
	}
	return out, nil
}
