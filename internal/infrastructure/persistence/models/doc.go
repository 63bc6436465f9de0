// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns for entities and aggregate roots
//   - identity.go: permissions, roles, role_permissions and users
//
// Mappers convert between domain entities and persistence models; repositories
// only ever hand domain types to callers.
package models
