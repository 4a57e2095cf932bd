// Package holiday answers "is this date an NSE market holiday". It prefers
// an authoritative list of exact dates loaded from a file and degrades to a
// small recurring (month, day) table when that list is unavailable.
package holiday
