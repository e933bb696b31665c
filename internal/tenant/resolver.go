package tenant

import "strings"

// reservedSegments are first path segments that can never be a tenant id.
var reservedSegments = map[string]struct{}{
	"":              {},
	"login":         {},
	"registro":      {},
	"dashboard":     {},
	"tpv":           {},
	"mi-cuenta":     {},
	"facturas":      {},
	"perfil":        {},
	"configuracion": {},
	"soporte":       {},
	"ayuda":         {},
	"estadisticas":  {},
	"caja-diaria":   {},
	"pro":           {},
	"superadmin":    {},
}

// publicPrefixes are routes that never carry tenant context.
var publicPrefixes = []string{
	"/login",
	"/registro",
	"/recuperar-password",
	"/reset-password",
	"/superadmin",
}

// ResolveFromPath extracts the tenant id from a route path.
//
// A `/tpv/{id}/...` path always wins. Otherwise the first segment is the
// tenant id unless it is a reserved application route.
func ResolveFromPath(pathname string) (string, bool) {
	segments := splitPath(pathname)
	if len(segments) == 0 {
		return "", false
	}

	if segments[0] == "tpv" && len(segments) > 1 && segments[1] != "" {
		return segments[1], true
	}

	if _, reserved := reservedSegments[segments[0]]; reserved {
		return "", false
	}
	return segments[0], true
}

// IsPublicRoute reports whether the path belongs to the unauthenticated
// surface, where no tenant data should ever be fetched.
func IsPublicRoute(pathname string) bool {
	cleaned := "/" + strings.Join(splitPath(pathname), "/")
	if cleaned == "/" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if cleaned == prefix || strings.HasPrefix(cleaned, prefix+"/") {
			return true
		}
	}
	return false
}

func splitPath(pathname string) []string {
	trimmed := strings.Trim(pathname, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
