// Package logtail reads the end of the qrscan log file for the Logs view.
//
// Read keeps a ring buffer of maxLines, so memory stays bounded by the
// requested line count rather than the file size. Lines come back oldest
// first. A missing file is not an error; the log may simply not exist yet.
//
// The logger writes JSON objects with ts, level, msg and component keys.
// Parse turns one of those into an Entry and keeps any other attributes in
// Fields. Lines that are not JSON, such as console-format output, are
// preserved verbatim in Entry.Raw and Format prints them unchanged.
package logtail
