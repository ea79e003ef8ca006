// Package repository provides a generic Bun-backed repository plus the
// catalog-specific song and artist repositories with credit management.
package repository
