package models

// Source labels attached to every EventCount.
const (
	SourceWindows     = "Windows"
	SourceDNSTLD      = "DNS (suspicious TLD)"
	SourceDNSLongName = "DNS (long name)"
)

// EventCount is one distinct observed value and how many times it occurred.
type EventCount struct {
	Key    string `json:"key" yaml:"key"`
	Count  int    `json:"count" yaml:"count"`
	Source string `json:"source" yaml:"source"`
}

// RankedEntry is an EventCount placed in the cross-source ranking.
type RankedEntry struct {
	Rank   int    `json:"rank" yaml:"rank"`
	Key    string `json:"key" yaml:"key"`
	Count  int    `json:"count" yaml:"count"`
	Source string `json:"source" yaml:"source"`
}

// Frequency is one row of a value → count table.
type Frequency struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}
