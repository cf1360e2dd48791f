package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// FSStore is the gzip-compressed-files-under-a-hex-nibble-partition backend
// from spec.md §4.1/§6: {basePath}/{ACRONYM}/metadata/{H1}/{H2}/{H3}/{HASH}.xml.gz
type FSStore struct {
	fs      afero.Fs
	root    string // {basePath}/{ACRONYM}/metadata
	hasher  Hasher
	metrics Options

	mu sync.Map // fingerprint -> *sync.Mutex, serializes concurrent puts of the same fingerprint
}

// NewFSStore opens (creating as needed) the FS blob backend for a single
// network partition. fsys may be afero.NewOsFs() in production or
// afero.NewMemMapFs() in tests.
func NewFSStore(fsys afero.Fs, network Network, opts Options) (*FSStore, error) {
	root := filepath.Join(oai.NetworkBasePath(opts.BasePath, network.Acronym), "metadata")
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, oai.StoreIOf("creating metadata dir %s: %v", root, err)
	}
	return &FSStore{
		fs:      fsys,
		root:    root,
		hasher:  opts.hasherOrDefault(),
		metrics: opts,
	}, nil
}

func (s *FSStore) pathFor(fingerprint string) string {
	h1, h2, h3 := oai.HexNibblePartition(fingerprint)
	return filepath.Join(s.root, h1, h2, h3, fingerprint+".xml.gz")
}

func (s *FSStore) fingerprintLock(fingerprint string) *sync.Mutex {
	v, _ := s.mu.LoadOrStore(fingerprint, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *FSStore) Put(ctx context.Context, content []byte) (string, error) {
	fp := s.hasher.Sum(content)
	lock := s.fingerprintLock(fp)
	lock.Lock()
	defer lock.Unlock()

	dest := s.pathFor(fp)
	if exists, err := afero.Exists(s.fs, dest); err != nil {
		return "", oai.StoreIOf("checking %s: %v", dest, err)
	} else if exists {
		s.metrics.metricsOrNoop().BlobPutDuplicates.Inc()
		return fp, nil // idempotent no-op
	}

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", oai.StoreIOf("creating partition dir for %s: %v", fp, err)
	}

	tmp := dest + fmt.Sprintf(".tmp-%d", os.Getpid())
	f, err := s.fs.Create(tmp)
	if err != nil {
		return "", oai.StoreIOf("creating temp blob file: %v", err)
	}
	gw := kgzip.NewWriter(f)
	if _, err := gw.Write(content); err != nil {
		_ = gw.Close()
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return "", oai.StoreIOf("writing blob %s: %v", fp, err)
	}
	if err := gw.Close(); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return "", oai.StoreIOf("closing gzip writer for %s: %v", fp, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return "", oai.StoreIOf("closing temp blob file: %v", err)
	}
	if err := s.fs.Rename(tmp, dest); err != nil {
		return "", oai.StoreIOf("publishing blob %s: %v", fp, err)
	}

	s.metrics.metricsOrNoop().BlobPuts.Inc()
	return fp, nil
}

func (s *FSStore) Get(ctx context.Context, fingerprint string) ([]byte, error) {
	s.metrics.metricsOrNoop().BlobGets.Inc()
	dest := s.pathFor(fingerprint)

	data, err := s.readCompressed(dest)
	if err != nil {
		if os.IsNotExist(err) {
			s.metrics.metricsOrNoop().BlobGetMisses.Inc()
			return nil, oai.NotFoundf("blob %s", fingerprint)
		}
		return nil, oai.StoreIOf("reading blob %s: %v", fingerprint, err)
	}

	gr, err := kgzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, oai.ParseErrorf("decompressing blob %s: %v", fingerprint, err)
	}
	defer gr.Close()
	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, oai.ParseErrorf("decompressing blob %s: %v", fingerprint, err)
	}
	return out, nil
}

// readCompressed reads the raw gzip bytes off disk, using a memory-mapped
// read when the backing afero.Fs is the real OS filesystem (cheap, avoids
// a full read() syscall copy for large blobs), falling back to a plain
// read for in-memory/test filesystems.
func (s *FSStore) readCompressed(path string) ([]byte, error) {
	if _, ok := s.fs.(*afero.OsFs); ok {
		return mmapRead(path)
	}
	return afero.ReadFile(s.fs, path)
}

func (s *FSStore) Delete(ctx context.Context, fingerprint string) (bool, error) {
	dest := s.pathFor(fingerprint)
	exists, err := afero.Exists(s.fs, dest)
	if err != nil {
		return false, oai.StoreIOf("checking %s: %v", dest, err)
	}
	if !exists {
		return false, nil
	}
	if err := s.fs.Remove(dest); err != nil {
		return false, oai.StoreIOf("deleting blob %s: %v", fingerprint, err)
	}
	return true, nil
}

// ForEachHash walks the partition's loose files and invokes consumer for
// each fingerprint, up to 8 invocations in flight at once. consumer must be
// safe to call concurrently from multiple goroutines; the interface's "no
// ordering guarantee" reflects that fan-out.
func (s *FSStore) ForEachHash(ctx context.Context, consumer func(string) error) error {
	var files []string
	err := afero.Walk(s.fs, s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(filepath.Base(path)) == ".gz" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return oai.StoreIOf("walking %s: %v", s.root, err)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, path := range files {
		path := path
		g.Go(func() error {
			base := filepath.Base(path)
			fp := base[:len(base)-len(".xml.gz")]
			return consumer(fp)
		})
	}
	return g.Wait()
}

func (s *FSStore) CleanAndOptimize(ctx context.Context) (bool, error) {
	// Opportunistic: nothing to vacuum for loose gzip files beyond what
	// the filesystem itself reclaims on delete; report success per the
	// "no guaranteed reduction" contract (spec.md §4.1).
	return true, nil
}

func (s *FSStore) Close() error { return nil }
