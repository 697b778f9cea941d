// Package providers models the identity-provider backends accounts can
// authenticate through. The local "email" backend is completed in-process;
// federated backends are external services reached through their begin URL.
package providers

// EmailBackend is the name of the local email identity provider.
const EmailBackend = "email"

// Backend is one configured identity provider.
type Backend struct {
	Name     string `json:"name"`
	BeginURL string `json:"begin_url"`
}

// Registry holds the configured identity-provider backends.
type Registry struct {
	backends []Backend
}

// NewRegistry builds a registry from configured backend names. Order is kept.
func NewRegistry(names []string) *Registry {
	backends := make([]Backend, 0, len(names))
	for _, name := range names {
		b := Backend{Name: name}
		if name != EmailBackend {
			b.BeginURL = "/api/auth/" + name + "/begin"
		}
		backends = append(backends, b)
	}
	return &Registry{backends: backends}
}

// Names lists the configured backend names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		names = append(names, b.Name)
	}
	return names
}

// Has reports whether a backend is configured.
func (r *Registry) Has(name string) bool {
	for _, b := range r.backends {
		if b.Name == name {
			return true
		}
	}
	return false
}

// HasEmail reports whether the local email backend is configured.
func (r *Registry) HasEmail() bool {
	return r.Has(EmailBackend)
}

// SingleFederated returns the sole configured backend when exactly one exists
// and it is not the local email backend. Login and registration short-circuit
// straight to its begin-flow in that case.
func (r *Registry) SingleFederated() (Backend, bool) {
	if len(r.backends) == 1 && r.backends[0].Name != EmailBackend {
		return r.backends[0], true
	}
	return Backend{}, false
}

// Federated lists the non-email backends.
func (r *Registry) Federated() []Backend {
	out := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		if b.Name != EmailBackend {
			out = append(out, b)
		}
	}
	return out
}
