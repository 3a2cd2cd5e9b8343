package httpx

// Request and response headers used by the API.
const (
	// HeaderUserID carries the caller's user id. It scopes project listings
	// and is trusted as given.
	HeaderUserID = "X-User-ID"
	// HeaderRequestID correlates a request across logs.
	HeaderRequestID = "X-Request-ID"
)

// uploadFormField is the multipart field holding the model file.
const uploadFormField = "file"

// multipartOverhead is allowed on top of the upload limit for multipart framing.
const multipartOverhead = 1 << 20

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 32 << 20
