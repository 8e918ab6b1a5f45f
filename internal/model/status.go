package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is a player's in-game status. It changes how relayed messages are delivered.
type Status string

const (
	StatusOnMission Status = "Active (on mission)"
	StatusArrested  Status = "Arrested"
	StatusHacked    Status = "Hacked"
	StatusTraitor   Status = "Traitor"
	StatusDead      Status = "Dead"
	StatusUndefined Status = "Undefined"
)

// Statuses lists every valid status in display order
var Statuses = []Status{
	StatusOnMission,
	StatusArrested,
	StatusHacked,
	StatusTraitor,
	StatusDead,
	StatusUndefined,
}

// ParseStatus accepts the exact display form of a status
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// EncodeStatus turns a status into a callback-safe token: punctuation is
// dropped, whitespace runs become one underscore, and the result is lowercased.
func EncodeStatus(s Status) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range string(s) {
		switch {
		case unicode.IsPunct(r):
			continue
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte('_')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	// Casers carry state, so each call gets its own.
	return cases.Lower(language.Und).String(b.String())
}

// DecodeStatus inverts EncodeStatus by matching against every known status
func DecodeStatus(token string) (Status, error) {
	for _, st := range Statuses {
		if EncodeStatus(st) == token {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}
