package telemetry

import (
	"strings"
	"sync"
)

// RecorderAPI keeps every broken/warning id it receives and forwards
// everything to slog, it is meant for tests that assert on reports.
type RecorderAPI struct {
	SlogAPI

	mutex    sync.Mutex
	broken   []string
	warnings []string
}

func (r *RecorderAPI) ReportBroken(id string, params ...any) {
	r.mutex.Lock()
	r.broken = append(r.broken, id)
	r.mutex.Unlock()
	r.SlogAPI.ReportBroken(id, params...)
}

func (r *RecorderAPI) ReportWarning(id string, params ...any) {
	r.mutex.Lock()
	r.warnings = append(r.warnings, id)
	r.mutex.Unlock()
	r.SlogAPI.ReportWarning(id, params...)
}

// Broken returns the ids reported as broken that end with suffix.
func (r *RecorderAPI) Broken(suffix string) []string {
	return r.filter(r.broken, suffix)
}

// Warnings returns the ids reported as warnings that end with suffix.
func (r *RecorderAPI) Warnings(suffix string) []string {
	return r.filter(r.warnings, suffix)
}

func (r *RecorderAPI) filter(ids []string, suffix string) []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []string
	for _, id := range ids {
		if strings.HasSuffix(id, suffix) {
			out = append(out, id)
		}
	}
	return out
}
