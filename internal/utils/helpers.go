package utils

// Tags builds a Sentry tag map from alternating key/value pairs.
// A trailing key without a value is dropped.
func Tags(pairs ...string) map[string]string {
	tags := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		tags[pairs[i]] = pairs[i+1]
	}
	return tags
}
