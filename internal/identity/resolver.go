package identity

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"idola-backend/internal/components/telemetry"

	"github.com/fsnotify/fsnotify"
)

const (
	report_resolver_reload = "resolver.reload"
	report_resolver_watch  = "resolver.watch"
)

// Resolver serves lookups from the current Table and can swap it when the
// reference files change on disk.
type Resolver struct {
	table atomic.Pointer[Table]
	tel   telemetry.API
	dir   string
	files []string
}

func NewResolver(table *Table, tel telemetry.API) *Resolver {
	r := &Resolver{tel: telemetry.NewScopedAPI("identity", tel)}
	r.table.Store(table)
	return r
}

// OpenResolver loads the reference files in dir.
func OpenResolver(dir string, files []string, tel telemetry.API) (*Resolver, error) {
	if len(files) == 0 {
		files = DefaultFiles
	}
	table, err := LoadDir(dir, files)
	if err != nil {
		return nil, err
	}
	r := NewResolver(table, tel)
	r.dir = dir
	r.files = files
	r.tel.ReportCount("entries", int64(table.Len()))
	return r, nil
}

func (r *Resolver) Table() *Table {
	return r.table.Load()
}

func (r *Resolver) Name(id int64) string {
	return r.Table().Name(id)
}

func (r *Resolver) Lookup(id string) (string, bool) {
	return r.Table().Lookup(id)
}

func (r *Resolver) Exact(id int64) bool {
	return r.Table().Exact(id)
}

func (r *Resolver) Search(query string, limit int) []Match {
	return r.Table().Search(query, limit)
}

// Reload rereads the files the resolver was opened with. A broken file keeps
// the previous table.
func (r *Resolver) Reload() error {
	table, err := LoadDir(r.dir, r.files)
	if err != nil {
		r.tel.ReportBroken(report_resolver_reload, err)
		return err
	}
	r.table.Store(table)
	r.tel.ReportCount("entries", int64(table.Len()))
	return nil
}

// Watch reloads the table whenever one of the reference files is written,
// until ctx is done. Bursts of events are collapsed into one reload.
func (r *Resolver) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	err = watcher.Add(r.dir)
	if err != nil {
		watcher.Close()
		return err
	}

	tracked := make(map[string]struct{}, len(r.files))
	for _, f := range r.files {
		tracked[f] = struct{}{}
	}

	go func() {
		defer watcher.Close()

		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, isTracked := tracked[filepath.Base(event.Name)]; !isTracked {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					debounce = time.After(500 * time.Millisecond)
				}
			case <-debounce:
				debounce = nil
				r.Reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.tel.ReportWarning(report_resolver_watch, err)
			}
		}
	}()

	return nil
}
