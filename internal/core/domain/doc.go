// Package domain contains the core types of the archive engine: archive
// kinds and their schemas, flat records, date windows, and the partitioning
// logic that turns a watermark into a fetch plan.
//
// Types here have no dependencies on adapters or the network. Anything that
// talks to the Parliament APIs, the filesystem, or the CRM lives behind the
// ports in internal/core/ports/driven.
package domain
