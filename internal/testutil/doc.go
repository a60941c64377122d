// Package testutil contains helper fakes and builders used across tests to
// reduce boilerplate when exercising the session registry, the orchestrator
// and the confirmation protocol against a scriptable transport. These helpers
// are intentionally minimal and avoid adding third-party dependencies. They
// are not intended for production usage.
package testutil
