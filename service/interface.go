// Package service runs keybridge's long-lived subsystems under one lifecycle.
package service

import "github.com/lixenwraith/keybridge/host"

// Service is a hub-managed subsystem
//
// The hub calls Init on every service in dependency order with the same args,
// then Start in that order, and Stop in reverse on shutdown or rollback.
type Service interface {
	// Name is the registration key; unique per hub
	Name() string

	// Dependencies names services that must initialize first
	Dependencies() []string

	// Init receives the hub-wide args and picks out the ones it understands
	Init(args ...any) error

	// Start launches background work; all services are initialized by then
	Start() error

	// Stop releases resources; idempotent
	Stop() error
}

// InputService is a service that produces host events for the translator
type InputService interface {
	Service
	host.Source
}
