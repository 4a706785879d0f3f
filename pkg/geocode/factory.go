package geocode

import "github.com/rotisserie/eris"

// Provider names accepted by NewProvider.
const (
	ProviderOpenCage = "opencage"
	ProviderGoogle   = "google"
)

// NewProvider builds the named provider. An empty key yields a provider that
// reports Available() == false rather than an error.
func NewProvider(name, key string, opts ...Option) (Provider, error) {
	switch name {
	case ProviderOpenCage, "":
		return NewOpenCage(key, opts...), nil
	case ProviderGoogle:
		return NewGoogle(key, opts...), nil
	default:
		return nil, eris.Errorf("geocode: unknown provider %q (valid: opencage, google)", name)
	}
}
