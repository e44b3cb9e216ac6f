// Package dbinit bootstraps a process's database access: it loads .env
// files, builds one statement-logging engine from DATABASE_URL and exposes
// InitDB, which drops and recreates every table of the caller's schema
// metadata.
//
// InitDB is destructive. All rows in the registered tables are lost.
package dbinit
