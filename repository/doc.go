// Package repository provides a generic table repository built on Bun. It is
// bound to a bun.IDB so the same code runs on a *bun.DB, a bun.Conn or a
// bun.Tx.
package repository
