// Package driven declares the interfaces the core services depend on:
// remote sources, archive storage, record normalisers, the run journal and
// the CRM sink. Adapters implement them; services only see these contracts.
package driven
