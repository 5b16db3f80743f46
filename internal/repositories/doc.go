// Package repositories provides the persistence layer over sqlite.
//
// Two entities are stored: OAuth tokens keyed by account role
// ([TokenRepository]) and the history of transfer invocations
// ([RunRepository]). Repositories hold a *sql.DB and never own its
// lifecycle; schema management lives in internal/shared migrations.
package repositories
