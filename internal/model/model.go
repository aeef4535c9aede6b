package model

import "time"

// Entry is one broadcast item as it leaves the list decoder. URLSmall and
// URLHD are fully expanded absolute URLs or empty; the diff encoding never
// escapes the decoder.
type Entry struct {
	Station string
	Topic   string
	Title   string
	// Air date; nil if the feed value was absent or unparsable.
	Date *time.Time
	// Air time of day; nil if absent or unparsable.
	AirTime *time.Time
	// Duration in seconds; nil if absent or unparsable.
	Duration *int64
	// The size in MB, kept as the free text the feed ships.
	Size         string
	Description  string
	URL          string
	Website      string
	URLSubtitles string
	URLRTMP      string
	URLSmall     string
	URLRTMPSmall string
	URLHD        string
	URLRTMPHD    string
	DatumL       string
	URLHistory   string
	Geo          string
	New          string
}

// Candidate is a catalog row returned by a subscription search, before
// quality resolution. Empty URLSmall/URLHD mean no such variant exists.
type Candidate struct {
	Title    string
	Date     *time.Time
	URL      string
	URLSmall string
	URLHD    string
}

// Match is a candidate with its quality-resolved download URL.
type Match struct {
	Title string
	Date  *time.Time
	URL   string
}
