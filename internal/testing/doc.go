// Package testing provides test utilities, builders, and fixtures for unit
// and integration tests.
//
// This package centralizes common testing patterns to avoid duplication
// across test files:
//   - ConfigBuilder: fluent builder for creating test configurations
//   - InfraFixture: pre-configured mock infrastructure for common scenarios
//   - RecordingObserver: observer that records events for assertions
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithClusterName("acme-web").
//	    WithRegion("il-central-1").
//	    Build()
//
//	fixture := testing.NewInfraFixture()
//	mock := fixture.Stateful()
package testing
