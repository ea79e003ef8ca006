// Package database provides connection management, migrations, foreign key
// handling, SQL seeding, configuration types, logging, health checks, and
// related utilities built on top of Bun for the Song-Graph catalog.
package database
