// Package database owns the GORM connection and schema migration.
//
// Domain-specific queries live in the subpackages (sessions, books, notes,
// bookmarks, glossary, resources, goals, recordings, users), each exposing a
// Repository over the shared *gorm.DB. HTTP controllers depend on the
// repositories through per-controller interfaces, never on GORM directly.
package database
