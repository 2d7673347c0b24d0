package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_http_request  = "http.request"
	report_http_response = "http.response"
	report_http_error    = "http.error"
)

// DumpOutput receives the full request/response text of every exchange.
type DumpOutput interface {
	Write(id string, contents string)
}

// secretFields are json fields whose values never leave the process, they
// carry device credentials or the current session.
var secretFields = regexp.MustCompile(`"(auth_key|device_token|device_id|retrans_key|session_key|uuid)"\s*:\s*"[^"]*"`)

func redact(text string) string {
	return secretFields.ReplaceAllString(text, `"$1":"<redacted>"`)
}

type exchangeInfo struct {
	id      uint64
	started time.Time
}

type exchangeKey struct{}

type httpObserver struct {
	tel    API
	output DumpOutput
	nextId *atomic.Uint64
}

// InstrumentResty numbers every exchange made by client and reports it at
// debug level. Error statuses are reported as warnings with a redacted dump
// and transport failures as broken. A non-nil output also receives the dump
// of every exchange.
func InstrumentResty(client *resty.Client, tel API, output DumpOutput) {
	o := httpObserver{
		tel:    tel,
		output: output,
		nextId: &atomic.Uint64{},
	}
	client.OnBeforeRequest(o.before)
	client.OnAfterResponse(o.after)
	client.OnError(o.failed)
}

func (o httpObserver) before(_ *resty.Client, req *resty.Request) error {
	info := exchangeInfo{
		id:      o.nextId.Add(1),
		started: time.Now(),
	}
	o.tel.ReportDebug(report_http_request, info.id, req.Method, req.URL)
	req.SetContext(context.WithValue(req.Context(), exchangeKey{}, info))
	return nil
}

func exchangeOf(req *resty.Request) (exchangeInfo, bool) {
	info, ok := req.Context().Value(exchangeKey{}).(exchangeInfo)
	return info, ok
}

func (o httpObserver) after(_ *resty.Client, res *resty.Response) error {
	info, ok := exchangeOf(res.Request)
	if !ok {
		return nil
	}
	elapsed := time.Since(info.started)

	var dump string
	if o.output != nil || res.IsError() {
		dump = Dump(res)
	}
	if o.output != nil {
		o.output.Write(strconv.FormatUint(info.id, 10), dump)
	}
	if res.IsError() {
		o.tel.ReportWarning(report_http_response, info.id, elapsed.String(), dump)
		return nil
	}
	o.tel.ReportDebug(report_http_response, info.id, elapsed.String(), res.StatusCode())
	return nil
}

func (o httpObserver) failed(req *resty.Request, err error) {
	var elapsed time.Duration
	if info, ok := exchangeOf(req); ok {
		elapsed = time.Since(info.started)
	}
	o.tel.ReportBroken(report_http_error, err, req.Method, req.URL, elapsed.String())
}

func writeHeaders(b *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(b, "%s: %s\n", k, v)
		}
	}
}

func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return "(no body)"
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("(body unavailable: %s)", err)
	}
	if body == nil {
		return "(no body)"
	}
	defer body.Close()
	contents, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(body unreadable: %s)", err)
	}
	return string(contents)
}

// Dump renders a whole exchange as text with credentials redacted.
func Dump(res *resty.Response) string {
	var b strings.Builder

	b.WriteString("> ")
	b.WriteString(res.Request.Method)
	b.WriteByte(' ')
	b.WriteString(res.Request.URL)
	b.WriteByte('\n')
	if res.Request.RawRequest != nil {
		writeHeaders(&b, res.Request.RawRequest.Header)
	}
	b.WriteByte('\n')
	b.WriteString(redact(requestBody(res.Request.RawRequest)))
	b.WriteString("\n\n< ")
	b.WriteString(strconv.Itoa(res.StatusCode()))
	b.WriteByte('\n')
	writeHeaders(&b, res.Header())
	b.WriteByte('\n')
	b.WriteString(redact(res.String()))
	b.WriteByte('\n')

	return b.String()
}
