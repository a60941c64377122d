// Package core provides the foundational domain types and interfaces used by
// TradeFleet. It defines the core abstractions for:
//
//   - Bot sessions (one authenticated account on the remote trading network)
//   - Trade offers (state machine from construction to a terminal state)
//   - The Transport contract (authenticated connectivity to the remote network)
//   - The PublicReader contract (unauthenticated inventory & market reads)
//   - The SessionRegistry contract (live-session ownership & per-account exclusion)
//
// The package intentionally keeps implementation concerns (registries,
// orchestration, HTTP clients) out of scope, exposing small interfaces so that
// callers can swap backends and tests can inject fakes.
package core
