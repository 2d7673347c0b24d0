package telemetry

import "strings"

// API is how components report trouble and counters. Everything that can
// fail in production takes one so tests can swap in a RecorderAPI.
//
// note: fault injection point
type API interface {
	// ReportBroken reports something that needs a human to look at it.
	//
	// `id` names the component at the granularity you would search an admin
	// dashboard for: lowercase, underscores inside a component name, dashes
	// between a component and its method, ex. `client.fetch-ranking-page`.
	// Details such as HTTP statuses belong in params, not in the id.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something unexpected that the component recovered
	// from, same id rules as ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug is dropped unless verbose logging is on.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a gauge-like value, ex. the number of cached
	// profiles after a save. Consecutive counts are not meant to be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a dotted namespace, ex. a "party" scope
// turns `formatter.idomag` into `party.formatter.idomag`.
type ScopedAPI struct {
	namespace string
	inner     API
}

// NewScopedAPI wraps inner, scoping an already scoped API extends its
// namespace instead of stacking wrappers.
func NewScopedAPI(namespace string, inner API) ScopedAPI {
	if scoped, ok := inner.(ScopedAPI); ok {
		return ScopedAPI{
			namespace: scoped.namespace + "." + namespace,
			inner:     scoped.inner,
		}
	}
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) id(id string) string {
	var b strings.Builder
	b.Grow(len(s.namespace) + 1 + len(id))
	b.WriteString(s.namespace)
	b.WriteByte('.')
	b.WriteString(id)
	return b.String()
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.id(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.id(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.id(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.id(id), count)
}
