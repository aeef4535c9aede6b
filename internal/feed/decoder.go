package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mediathekdl/internal/model"
)

// ErrFeedFormat reports a list whose overall shape is not the expected
// top-level JSON array. Individual malformed rows are dropped instead.
var ErrFeedFormat = errors.New("unexpected list format")

// Column positions inside a list row. The list is positional: every data
// row carries exactly these twenty string fields in this order.
const (
	colStation = iota
	colTopic
	colTitle
	colDate
	colTime
	colDuration
	colSize
	colDescription
	colURL
	colWebsite
	colURLSubtitles
	colURLRTMP
	colURLSmall
	colURLRTMPSmall
	colURLHD
	colURLRTMPHD
	colDatumL
	colURLHistory
	colGeo
	colNew

	columnCount
)

// metadataRows is the number of leading list elements that describe the
// list itself rather than broadcast items.
const metadataRows = 2

const (
	dateLayout  = "02.01.2006"
	clockLayout = "15:04:05"
)

// decodeState carries the station/topic values the list omits for
// consecutive rows of the same broadcaster or show. The two fields are
// carried forward independently of each other.
type decodeState struct {
	lastStation string
	lastTopic   string
}

// Decode parses the decompressed list into entries, in list order. It is a
// single forward pass: the carry-forward state makes rows order-dependent.
func Decode(data []byte) ([]model.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedFormat, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: top level is not an array", ErrFeedFormat)
	}

	var (
		entries []model.Entry
		state   decodeState
		index   int
	)

	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFeedFormat, err)
		}

		index++
		if index <= metadataRows {
			continue
		}

		row, ok := decodeRow(raw)
		if !ok {
			// A list format variant this decoder does not consume.
			continue
		}

		entries = append(entries, state.entry(row))
	}

	return entries, nil
}

// decodeRow validates the wrapper-object-around-20-strings row shape once.
// Anything else reports !ok and the row is dropped. Non-string members of a
// well-shaped row decode as empty strings.
func decodeRow(raw json.RawMessage) ([columnCount]string, bool) {
	var row [columnCount]string

	var wrapper map[string][]any
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return row, false
	}
	if len(wrapper) != 1 {
		return row, false
	}

	for _, fields := range wrapper {
		if len(fields) != columnCount {
			return row, false
		}
		for i, field := range fields {
			s, _ := field.(string)
			row[i] = s
		}
	}

	return row, true
}

func (s *decodeState) entry(row [columnCount]string) model.Entry {
	if row[colStation] != "" {
		s.lastStation = row[colStation]
	}
	if row[colTopic] != "" {
		s.lastTopic = row[colTopic]
	}

	return model.Entry{
		Station:      s.lastStation,
		Topic:        s.lastTopic,
		Title:        row[colTitle],
		Date:         parseDate(row[colDate]),
		AirTime:      parseClock(row[colTime]),
		Duration:     parseDuration(row[colDuration]),
		Size:         row[colSize],
		Description:  row[colDescription],
		URL:          row[colURL],
		Website:      row[colWebsite],
		URLSubtitles: row[colURLSubtitles],
		URLRTMP:      row[colURLRTMP],
		URLSmall:     expandVariantURL(row[colURL], row[colURLSmall]),
		URLRTMPSmall: row[colURLRTMPSmall],
		URLHD:        expandVariantURL(row[colURL], row[colURLHD]),
		URLRTMPHD:    row[colURLRTMPHD],
		DatumL:       row[colDatumL],
		URLHistory:   row[colURLHistory],
		Geo:          row[colGeo],
		New:          row[colNew],
	}
}

// expandVariantURL resolves a "<position>|<replacement>" diff against the
// canonical URL: everything from position to the end is replaced. Empty
// input means no variant exists and stays empty; a malformed diff also
// resolves to empty so a broken variant never shadows the canonical URL.
func expandVariantURL(canonical, diff string) string {
	if diff == "" {
		return ""
	}

	pos, replacement, ok := strings.Cut(diff, "|")
	if !ok {
		return ""
	}

	n, err := strconv.Atoi(pos)
	if err != nil || n < 0 || n > len(canonical) {
		return ""
	}

	return canonical[:n] + replacement
}

func parseDate(s string) *time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseClock(s string) *time.Time {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// parseDuration reads a HH:MM:SS value as an offset from midnight and
// converts it to total seconds.
func parseDuration(s string) *int64 {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return nil
	}

	seconds := int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
	return &seconds
}
