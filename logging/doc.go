// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer FleetLogger with contextual
// helpers (account, component) and domain specific logging helpers for offer
// dispatch, confirmations and price lookups. Secret material never passes
// through this package; callers log account ids and derived state only.
package logging
