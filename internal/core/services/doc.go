// Package services implements the engine's use cases on top of the driven
// ports: windowed question syncs, id-space sweeps of members and
// constituencies, and reconciliation of active members into the CRM sink.
package services
