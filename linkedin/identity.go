package linkedin

import "strings"

// ListingID derives the identity key of a listing from its URL: the query and
// fragment are stripped, then the last path segment's final '-' token is used
// (the numeric posting id in /jobs/view/<slug>-<id>). Falls back to the
// stripped URL when no token can be extracted.
func ListingID(rawURL string) string {
	stripped := rawURL
	if i := strings.IndexAny(stripped, "?#"); i >= 0 {
		stripped = stripped[:i]
	}

	path := strings.TrimRight(stripped, "/")
	segment := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		segment = path[i+1:]
	}
	if i := strings.LastIndex(segment, "-"); i >= 0 {
		segment = segment[i+1:]
	}

	if segment == "" {
		return stripped
	}
	return segment
}
