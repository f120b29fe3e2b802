package naming

import (
	"path/filepath"
	"strings"
)

// TripOutputPath builds the output file path for a trip.
// ext is the file extension with or without the leading dot.
//
//	<outputDir>/<key>_<firstToken>_trip.<ext>
func TripOutputPath(outputDir, key, firstToken, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return filepath.Join(outputDir, key+"_"+firstToken+"_trip."+ext)
}
