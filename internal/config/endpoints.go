package config

import (
	"strings"

	"github.com/nimbus-mining/poolclient/stratum"
)

// ParseDialect maps the config's dialect name to a stratum.DialectMode.
// An empty or unrecognized name yields DialectUnknown (autodetect).
func ParseDialect(name string) stratum.DialectMode {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stratum":
		return stratum.DialectStratum
	case "nrgproxy":
		return stratum.DialectNRGProxy
	case "energistratum":
		return stratum.DialectEnergiStratum
	default:
		return stratum.DialectUnknown
	}
}

// CredentialedAddresses returns c.Pool.Addresses with c.Pool.Username and
// c.Pool.Password inserted as userinfo on any address that doesn't already
// carry its own. The caller passes each result to a Manager's
// AddConnection along with ParseDialect(c.Pool.Dialect).
func (c *Config) CredentialedAddresses() []string {
	out := make([]string, len(c.Pool.Addresses))
	for i, addr := range c.Pool.Addresses {
		if strings.Contains(addr, "@") {
			out[i] = addr
			continue
		}
		out[i] = withCredentials(addr, c.Pool.Username, c.Pool.Password)
	}
	return out
}

// withCredentials inserts user:password@ ahead of the host in a
// scheme://host:port pool address.
func withCredentials(uri, user, password string) string {
	scheme := ""
	rest := uri
	if i := strings.Index(uri, "://"); i >= 0 {
		scheme = uri[:i+3]
		rest = uri[i+3:]
	}
	return scheme + user + ":" + password + "@" + rest
}
