// Package registry houses concrete implementations of core.SessionRegistry.
// The interface itself (and the BotSession struct) live in the core package to
// centralize domain contracts. Keeping only implementations here prevents
// higher level packages (orchestrator, façade) from depending on concrete
// storage.
//
// Add additional backends in sub-packages without changing any calling code –
// only the wiring layer needs to decide which implementation to instantiate.
package registry
