// Package frame turns the raw device byte stream into validated readings.
//
// [Reader] splits the stream into CR/LF terminated lines, bounds their
// length and drops everything received during the startup sync window.
// [Parse] extracts the MOISTURE, RELAY and THRESHOLD fields of one line.
package frame
