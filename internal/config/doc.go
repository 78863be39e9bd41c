// Package config loads, validates, and persists the ekstrap.yaml
// configuration.
//
// Loading is a fixed sequence: read the file, unmarshal into a raw map,
// decode into the typed Config, fill defaults for anything left unset,
// then validate. Callers always see the fully resolved configuration;
// subnet CIDRs left empty are carved out of the VPC block and zones are
// derived from the region.
//
// Operational timeouts are deliberately not part of the file. They come
// from EKSTRAP_TIMEOUT_* environment variables (see Timeouts) so CI and
// e2e runs can tighten or relax them without editing the config.
package config
