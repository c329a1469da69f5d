package config

import (
	providerpkg "tickerlens-api/pkg/provider"
	resolverpkg "tickerlens-api/pkg/resolver"
)

// MustLoadProviders loads etc/providers.yaml from the project root and
// panics on error. It isolates the provider section so tests that only
// need searchers do not have to stand up the full app config.
func MustLoadProviders() *providerpkg.Config {
	return providerpkg.MustLoad()
}

// ResolverOrDefault returns the hydrated resolver section, or the
// defaults when the main config did not reference one.
func (c *Config) ResolverOrDefault() resolverpkg.Config {
	if c.Resolver.Value != nil {
		return *c.Resolver.Value
	}
	return resolverpkg.DefaultConfig()
}

// ProvidersOrNil returns the hydrated provider section, which may be nil
// when the deployment runs purely on local reference data.
func (c *Config) ProvidersOrNil() *providerpkg.Config {
	return c.Providers.Value
}
