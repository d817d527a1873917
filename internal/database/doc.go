// Package database provides the SQLite-based visited store for sitemapper.
//
// The store holds a single table, visited_urls, with one row per processed
// URL: an auto-incremented id, the URL string, a visited flag and the
// insertion timestamp. It is the only persisted state of the crawler and
// survives between runs unless cleared.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for a single-domain crawl
// 4. A single connection gives atomic check-and-insert for free
package database
