package services

import (
	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
)

// Names of the built-in endpoints. They carry the generated prefix so that
// declarations can never claim them.
const (
	LoginEndpoint    = endpoint.GeneratedPrefix + "_login"
	RegisterEndpoint = endpoint.GeneratedPrefix + "_register"
	SummaryEndpoint  = endpoint.GeneratedPrefix + "_summary"
)

// DefaultsOptions selects the built-in endpoints to register
type DefaultsOptions struct {
	Login    bool
	Register bool
	Summary  bool
	// IdentifierField is listed as a body parameter of login and register
	IdentifierField string
}

// RegisterDefaults adds the enabled built-in endpoints to reg. They have no
// query and are served by dedicated handlers.
func RegisterDefaults(reg *registry.Registry, opts DefaultsOptions) error {
	defaults := []struct {
		enabled bool
		name    string
		def     endpoint.Definition
	}{
		{opts.Summary, SummaryEndpoint, endpoint.Definition{
			Route:       "",
			Method:      endpoint.MethodGet,
			Description: "Lists every available endpoint.",
		}},
		{opts.Login, LoginEndpoint, endpoint.Definition{
			Route:             "/login",
			Method:            endpoint.MethodPost,
			Description:       "Checks the user's credentials and returns a session token.",
			RequestBodyParams: []string{opts.IdentifierField, PasswordField},
		}},
		{opts.Register, RegisterEndpoint, endpoint.Definition{
			Route:             "/register",
			Method:            endpoint.MethodPost,
			Description:       "Creates a new user and returns a session token.",
			RequestBodyParams: []string{opts.IdentifierField, PasswordField},
		}},
	}

	for _, d := range defaults {
		if !d.enabled {
			continue
		}
		d.def.Generated = true
		if err := reg.Put(d.name, d.def, false); err != nil {
			return err
		}
	}
	return nil
}
