// Package pg manages the service's single PostgreSQL connection pool.
//
// A Manager is created empty at startup, opened once with Create and closed
// once at shutdown. Between those points handlers borrow connections with
// Acquire or, preferably, WithConn, which hands the connection back on every
// exit path. Any attempt to borrow outside that window fails immediately with
// ErrPoolNotInitialized.
//
// Every pooled session runs with search_path set to Config.Schema and
// statement_timeout set to Config.CommandTimeout. Migrate creates the schema
// and applies the goose migrations embedded in this package.
//
//	m := pg.New(cfg, log)
//	if err := m.Create(ctx); err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	version, err := m.Version(ctx)
package pg
