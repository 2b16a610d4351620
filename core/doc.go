// Package core defines the domain model for the forensics case service.
//
// It holds the case, evidence, custody, story and journal entities along with
// their enum types, the error taxonomy used across packages, and small shared
// runtime pieces (circuit breaker, Redis cache wrapper).
//
// Entities carry camelCase JSON tags because the investigator dashboard reads
// them directly.
package core
