// Package naming parses dash cam clip filenames and builds trip output paths.
//
// Clip names are underscore-delimited. The first three tokens form the trip
// date key and the last token (without extension) is the HHMMSS capture time:
//
//	2019_0613_174102_015_174102.MP4  ->  key "2019_0613_174102", time 17:41:02
//
// Output files are named <key>_<HHMMSS of the first clip>_trip.<ext>.
package naming
