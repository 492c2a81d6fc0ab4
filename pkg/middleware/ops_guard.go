package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-facility/pkg/configuration"
	"github.com/iota-uz/iota-facility/pkg/httpapi"
)

// OpsGuard hides operational endpoints (metrics) in production unless the
// caller comes from an allowed CIDR or presents the ops token, either as
// X-Ops-Token or as a bearer token. Hidden paths answer 404.
func OpsGuard(conf *configuration.Configuration, paths ...string) mux.MiddlewareFunc {
	if conf == nil {
		conf = configuration.Use()
	}
	active := conf.GoAppEnvironment == configuration.Production && conf.OpsGuard.Enabled
	allowed := parseCIDRs(conf.OpsGuard.CIDRs)
	token := []byte(strings.TrimSpace(conf.OpsGuard.Token))
	header := conf.RealIPHeader

	authorized := func(r *http.Request) bool {
		if ip, ok := realIP(r, header); ok && len(allowed) > 0 {
			if addr, err := netip.ParseAddr(ip); err == nil {
				for _, p := range allowed {
					if p.Contains(addr.Unmap()) {
						return true
					}
				}
			}
		}
		return len(token) > 0 && subtle.ConstantTimeCompare([]byte(opsToken(r)), token) == 1
	}

	return func(next http.Handler) http.Handler {
		if !active {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guardedPath(r.URL.Path, paths) && !authorized(r) {
				_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func guardedPath(path string, paths []string) bool {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

// parseCIDRs accepts a comma, semicolon or whitespace separated list and
// skips entries that do not parse.
func parseCIDRs(raw string) []netip.Prefix {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	var out []netip.Prefix
	for _, f := range fields {
		if p, err := netip.ParsePrefix(f); err == nil {
			out = append(out, p.Masked())
		}
	}
	return out
}

func opsToken(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get("X-Ops-Token")); t != "" {
		return t
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// realIP reads the first address of header (X-Forwarded-For style lists are
// allowed) and falls back to RemoteAddr.
func realIP(r *http.Request, header string) (string, bool) {
	v := ""
	if header != "" {
		v = strings.TrimSpace(r.Header.Get(header))
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
	}
	if v == "" {
		v = strings.TrimSpace(r.RemoteAddr)
	}
	if v == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(v); err == nil {
		return host, true
	}
	return v, true
}
