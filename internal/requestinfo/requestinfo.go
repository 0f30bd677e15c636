//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, IP + geolocation, URL, and timestamp).
//  Booking-site handlers read these to tag bookings with device class
//  and country without reparsing headers.  The structs are inert; they
//  contain no pointers to database handles or large buffers, so they
//  are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer            (UA parsing)
//  • github.com/oschwald/geoip2-golang   (MaxMind lookup)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string // Entire User-Agent header
	Browser     string // "Chrome", "Firefox", "Safari", ...
	Version     string // "124.0.6367"
	OS          string // "macOS", "Windows", "Android", "iOS", ...
	Device      string // "Desktop", "Phone", "Tablet", "TV", ...
	IsBot       bool   // True if UA matches crawler signatures
	PrimaryLang string // First tag from Accept-Language ("en", "es", ...)
}

// Geo holds IP-based geolocation hints.
// These are best-effort and may be empty if the DB has no match.
type Geo struct {
	IP         net.IP // Original client address (not X-Forwarded-For chain)
	CountryISO string // "US", "CA", "FR", ...
	City       string // "Chicago", "Paris", ...
}

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // Pointer copy, safe to dereference read-only
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is a read-only MaxMind handle, safe for concurrent lookups.
// nil when the GeoLite2 database is not configured; lookups then return
// empty hints.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database at startup.  An empty path
// disables geolocation without error.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	geoReader = r
	return nil
}

//
//  -----------------------------
//  Context plumbing
//  -----------------------------
//

type ctxKey struct{}

// FromContext returns the enrichment for this request, or nil when Enrich
// did not run.
func FromContext(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return info
}

//
//  -----------------------------
//  Parsing helpers
//  -----------------------------
//

// parseUA condenses uasurfer's enum soup into display strings.
func parseUA(raw, acceptLang string) UA {
	parsed := uasurfer.Parse(raw)

	lang := acceptLang
	if i := strings.IndexAny(lang, ",;"); i != -1 {
		lang = lang[:i]
	}

	device := "Other"
	switch parsed.DeviceType {
	case uasurfer.DeviceComputer:
		device = "Desktop"
	case uasurfer.DeviceTablet:
		device = "Tablet"
	case uasurfer.DevicePhone, uasurfer.DeviceWearable:
		device = "Mobile"
	case uasurfer.DeviceTV:
		device = "TV"
	}

	return UA{
		Raw:     raw,
		Browser: strings.TrimPrefix(parsed.Browser.Name.String(), "Browser"),
		Version: fmt.Sprintf("%d.%d.%d",
			parsed.Browser.Version.Major,
			parsed.Browser.Version.Minor,
			parsed.Browser.Version.Patch),
		OS:          strings.TrimPrefix(parsed.OS.Name.String(), "OS"),
		Device:      device,
		IsBot:       parsed.IsBot(),
		PrimaryLang: strings.TrimSpace(lang),
	}
}

// lookupGeo is best-effort; any failure yields empty hints.
func lookupGeo(ip net.IP) Geo {
	g := Geo{IP: ip}
	if geoReader == nil || ip == nil {
		return g
	}
	city, err := geoReader.City(ip)
	if err != nil {
		return g
	}
	g.CountryISO = city.Country.IsoCode
	if name, ok := city.City.Names["en"]; ok {
		g.City = name
	}
	return g
}
