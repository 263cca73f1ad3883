package httpclient

import (
	"fmt"
	"net/http"
)

// Auth types accepted in AuthConfig.Type.
const (
	AuthNone   = ""
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthAPIKey = "apikey"
)

// AuthConfig configures authentication applied to every download.
type AuthConfig struct {
	Type     string `yaml:"type" mapstructure:"type" validate:"omitempty,oneof=bearer basic apikey"`
	Token    string `yaml:"token" mapstructure:"token"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	// Key is the API key value, sent in the Header header (default X-API-Key).
	Key    string `yaml:"key" mapstructure:"key"`
	Header string `yaml:"header" mapstructure:"header"`
}

// Validate checks that the fields required by Type are present.
func (a AuthConfig) Validate() error {
	switch a.Type {
	case AuthNone:
	case AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("httpclient: bearer auth requires a token")
		}
	case AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("httpclient: basic auth requires a username")
		}
	case AuthAPIKey:
		if a.Key == "" {
			return fmt.Errorf("httpclient: apikey auth requires a key")
		}
	default:
		return fmt.Errorf("httpclient: unknown auth type %q", a.Type)
	}
	return nil
}

func (a AuthConfig) apply(req *http.Request) {
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		name := a.Header
		if name == "" {
			name = "X-API-Key"
		}
		req.Header.Set(name, a.Key)
	}
}
