// Package addons drives the lifecycle of the cluster's managed add-ons.
//
// Each add-on is reconciled through a small state machine. The observed
// provider status is first normalized: ACTIVE is healthy, an uninstalled
// add-on is NOT_INSTALLED, and every other reported value, including ones
// this code has never heard of, is DEGRADED. Unknown states fail toward
// repair, not toward silent acceptance.
//
// Transitions run once per add-on per invocation:
//
//	NOT_INSTALLED  install, then wait for ACTIVE
//	ACTIVE         nothing
//	DEGRADED       update in place; if the update call itself fails,
//	               delete and recreate, at most once
//
// The delete-then-recreate fallback is a compensating action, not a retry:
// looping it against a provider that is itself unavailable would never
// terminate. An add-on that finishes its sequence still unhealthy produces
// a DegradedResourceWarning and the run continues; add-on failures never
// abort the surrounding provisioning sequence.
package addons
