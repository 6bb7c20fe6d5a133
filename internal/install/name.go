package install

import "strings"

// AllPlatforms is the platform token accepted on every device.
const AllPlatforms = "all"

// DocumentName is a metadata document name split into its base name and
// platform token: "<base>.<platform>.<suffix>".
type DocumentName struct {
	Base     string
	Platform string
}

// ParseDocumentName strips the suffix and takes the next extension as the
// platform token. A name with a single extension has no platform token.
func ParseDocumentName(name string) DocumentName {
	stem := name
	if i := strings.LastIndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	if i := strings.LastIndexByte(stem, '.'); i >= 0 {
		return DocumentName{Base: stem[:i], Platform: stem[i+1:]}
	}
	return DocumentName{Base: stem}
}

// String returns "<base>.<platform>", or the base alone without a platform.
func (n DocumentName) String() string {
	if n.Platform == "" {
		return n.Base
	}
	return n.Base + "." + n.Platform
}

// Accepts reports whether a document built for token may be installed on a
// device whose platform is current.
func Accepts(anyPlatform bool, token, current string) bool {
	return anyPlatform || token == current || token == AllPlatforms
}
