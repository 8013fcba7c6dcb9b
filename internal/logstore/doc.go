// Package logstore owns the persisted log document:
//
//	{
//	  "config": {"port": "/dev/ttyACM0", "baud_rate": 9600},
//	  "data": [{"timestamp": "...", "humidity": 42.5, "relay_status": "ON", "threshold": 65.0}]
//	}
//
// Every append reloads the document from storage, repairs whatever shape it
// finds (missing or malformed config, a bare array from older writers, a
// non-array data member, unparsable text), appends one record, evicts the
// oldest record when the bound is exceeded and rewrites the whole document.
// Nothing is cached between appends.
package logstore
