package idola

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// AppVersionResolver produces the `app_ver` value sent with every request.
type AppVersionResolver interface {
	ResolveAppVersion(ctx context.Context) (string, error)
}

// FormatAppVersion joins a published client version with the shared secret.
func FormatAppVersion(version, secret string) string {
	return version + "@" + secret
}

// StaticVersion always resolves to the same published version.
type StaticVersion struct {
	Version string
	Secret  string
}

func (s StaticVersion) ResolveAppVersion(context.Context) (string, error) {
	if s.Version == "" {
		return "", fmt.Errorf("static app version is empty")
	}
	return FormatAppVersion(s.Version, s.Secret), nil
}

const (
	DefaultPackageId    = "com.sega.idola"
	DefaultStoreBaseUrl = "https://play.google.com"
)

// PlayStoreVersion reads the current version off the app's store listing,
// the upstream refuses clients that are not on the latest release.
type PlayStoreVersion struct {
	http      *resty.Client
	packageId string
	secret    string
}

func NewPlayStoreVersion(baseUrl, packageId, secret string) PlayStoreVersion {
	if baseUrl == "" {
		baseUrl = DefaultStoreBaseUrl
	}
	if packageId == "" {
		packageId = DefaultPackageId
	}
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 30)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	return PlayStoreVersion{http: client, packageId: packageId, secret: secret}
}

func (p PlayStoreVersion) ResolveAppVersion(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "appversion:PlayStore")
	defer span.End()

	res, err := p.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"id": p.packageId,
			"hl": "en",
		}).
		Get("/store/apps/details")
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", StatusError{Endpoint: "/store/apps/details", Code: res.StatusCode()}
	}

	version, err := parseStoreVersion(res.Body())
	if err != nil {
		return "", err
	}
	return FormatAppVersion(version, p.secret), nil
}

// the listing embeds the version inside a script blob as [[["1.2.3"]]
var scriptVersionRegex = regexp.MustCompile(`\[\[\["(\d+(?:\.\d+)+)"\]\]`)

func parseStoreVersion(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page))
	if err != nil {
		return "", err
	}

	version := ""
	doc.Find("div.hAyfc").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := strings.TrimSpace(row.Find("div.BgcNfc").Text())
		if label != "Current Version" {
			return true
		}
		version = strings.TrimSpace(row.Find("span.htlgb").First().Text())
		return false
	})
	if version != "" {
		return version, nil
	}

	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		match := scriptVersionRegex.FindStringSubmatch(script.Text())
		if match == nil {
			return true
		}
		version = match[1]
		return false
	})
	if version == "" {
		return "", fmt.Errorf("could not find current version on store listing")
	}
	return version, nil
}
