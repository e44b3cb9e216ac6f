// Package database builds a statement-logging Bun engine from a connection
// URL and resets schemas described by explicit Metadata. It also carries the
// configuration loaders (.env, YAML, environment), the query hooks, catalog
// inspection, SQL seeding and the error taxonomy shared by those pieces.
package database
