package api

// Route prefixes.
const (
	apiPrefix   = "/api/v1"
	mediaPrefix = "/media/recipes/"
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-cache"
)

// bearerSecurity marks an operation as requiring a bearer token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}
