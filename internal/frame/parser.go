package frame

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bft-labs/moisturelog/internal/domain"
)

const (
	moistureMarker  = "MOISTURE:"
	relayMarker     = "RELAY:"
	thresholdMarker = "THRESHOLD:"

	// valueWidth bounds the text captured for a numeric value.
	valueWidth = 15
)

// Field names reported in domain.ParseError.
const (
	FieldMoisture  = "MOISTURE"
	FieldRelay     = "RELAY"
	FieldThreshold = "THRESHOLD"
)

// numericPrefix matches what C atof would consume.
var numericPrefix = regexp.MustCompile(`^[ \t\n\v\f\r]*[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)

// Parser parses frame lines. The zero value is ready to use.
type Parser struct{}

// Parse implements the line parser used by the acquisition loop.
func (Parser) Parse(line string) (domain.Reading, error) {
	return Parse(line)
}

// Parse extracts a Reading from one line such as
//
//	MOISTURE:42.5,RELAY:1,THRESHOLD:65.0
//
// All three markers must be present, in any order. MOISTURE and RELAY values
// end at the next comma; THRESHOLD runs to the end of the line. RELAY must be
// exactly 0 or 1. Numbers are converted leniently: text that is not a number
// reads as 0.
func Parse(line string) (domain.Reading, error) {
	mi := strings.Index(line, moistureMarker)
	if mi < 0 {
		return domain.Reading{}, parseError(FieldMoisture, line, "", domain.ErrMissingMarker)
	}
	ri := strings.Index(line, relayMarker)
	if ri < 0 {
		return domain.Reading{}, parseError(FieldRelay, line, "", domain.ErrMissingMarker)
	}
	ti := strings.Index(line, thresholdMarker)
	if ti < 0 {
		return domain.Reading{}, parseError(FieldThreshold, line, "", domain.ErrMissingMarker)
	}

	humidity, ok := commaValue(line[mi+len(moistureMarker):])
	if !ok {
		return domain.Reading{}, parseError(FieldMoisture, line, "", domain.ErrUndelimitedField)
	}

	relayRaw, ok := commaValue(line[ri+len(relayMarker):])
	if !ok {
		return domain.Reading{}, parseError(FieldRelay, line, "", domain.ErrUndelimitedField)
	}
	var relay domain.RelayStatus
	switch relayRaw {
	case "0":
		relay = domain.RelayOff
	case "1":
		relay = domain.RelayOn
	default:
		return domain.Reading{}, parseError(FieldRelay, line, relayRaw, domain.ErrInvalidRelay)
	}

	threshold := bounded(line[ti+len(thresholdMarker):])

	return domain.Reading{
		Humidity:  LenientFloat(bounded(humidity)),
		Relay:     relay,
		Threshold: LenientFloat(threshold),
	}, nil
}

// commaValue returns the text before the first comma in s.
func commaValue(s string) (string, bool) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return "", false
	}
	return s[:i], true
}

func bounded(s string) string {
	if len(s) > valueWidth {
		return s[:valueWidth]
	}
	return s
}

// LenientFloat converts the leading decimal number of s, ignoring whatever
// follows it. It returns 0 when s has no numeric prefix or the value is not
// finite.
func LenientFloat(s string) float64 {
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimLeft(m, " \t\n\v\f\r"), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

func parseError(field, line, value string, err error) error {
	return &domain.ParseError{Field: field, Line: line, Value: value, Err: err}
}
