package blobstore

import (
	"github.com/spf13/afero"

	"github.com/lareferencia/lareferencia-core-lib-sub002/config"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// Open constructs the configured backend for a single network (spec.md
// §4.1: "Three back-end shapes must be supported by the contract (the
// implementation picks one at deploy time)").
func Open(fsys afero.Fs, cfg *config.Config, network Network, opts Options) (Store, error) {
	opts.BasePath = cfg.Store.BasePath
	switch cfg.Store.Backend {
	case config.BlobBackendSQL:
		return NewSQLStore(cfg.Store.BasePath, network, opts)
	case config.BlobBackendKV:
		return NewKVStore(cfg.Store.BasePath, network, opts)
	case config.BlobBackendFS, "":
		return NewFSStore(fsys, network, opts)
	default:
		return nil, oai.Invalidf("unknown blob backend %q", cfg.Store.Backend)
	}
}

// Manager owns one Store handle per network acronym, serializing creation
// (spec.md §5 "at most one live handle per network acronym").
type Manager struct {
	pool *handlePool[Store]
	fsys afero.Fs
	cfg  *config.Config
	opts Options
}

// NewManager builds a Manager that opens backends on demand via Open.
func NewManager(fsys afero.Fs, cfg *config.Config, opts Options) *Manager {
	m := &Manager{fsys: fsys, cfg: cfg, opts: opts}
	m.pool = newHandlePool(func(acronym string) (Store, error) {
		return Open(fsys, cfg, Network{Acronym: acronym}, opts)
	})
	return m
}

// For returns the (possibly newly created) Store handle for network.
func (m *Manager) For(network Network) (Store, error) {
	lockPath := oai.NetworkBasePath(m.cfg.Store.BasePath, network.Acronym) + ".lock"
	return m.pool.Get(network.Acronym, lockPath)
}

// CloseAll closes every open handle.
func (m *Manager) CloseAll() error {
	return m.pool.CloseAll(func(s Store) error { return s.Close() })
}
