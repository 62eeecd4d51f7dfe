package hub

import (
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/kb9vy/nettrxd/internal/logging"
)

// GeoLookup resolves a connecting peer's country from a GeoLite2 database,
// grounded on the teacher's geoip_service.go. A nil *GeoLookup (no database
// configured) is a legal, always-empty-result receiver.
type GeoLookup struct {
	db *geoip2.Reader
}

// NewGeoLookup opens the database at path, or returns nil if path is empty
// or the database can't be opened (geolocation is cosmetic, never fatal).
func NewGeoLookup(path string) *GeoLookup {
	if path == "" {
		return nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		logging.For("hub").Warn("failed to open GeoIP database, disabling lookups", "path", path, "err", err)
		return nil
	}
	return &GeoLookup{db: db}
}

// Lookup returns the ISO country name for host, or "" if unavailable.
func (g *GeoLookup) Lookup(host string) string {
	if g == nil {
		return ""
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	rec, err := g.db.Country(ip)
	if err != nil || rec == nil {
		return ""
	}
	return rec.Country.Names["en"]
}
