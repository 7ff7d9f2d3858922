package objects

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KostasZigo/gitobj/internal/constants"
	"github.com/KostasZigo/gitobj/utils"
)

// Author represents commit author/committer as Git stores it.
// NameAndEmail is kept verbatim ("Jane Doe <jane@example.com>") so that
// unusual identities round-trip byte for byte.
type Author struct {
	NameAndEmail string
	Timestamp    int64  // seconds since the Unix epoch
	Timezone     string // "+HHMM" or "-HHMM"
}

// NewAuthor builds an identity from its parts, taking the timezone from when.
func NewAuthor(name, email string, when time.Time) Author {
	_, offset := when.Zone()
	return Author{
		NameAndEmail: fmt.Sprintf("%s <%s>", name, email),
		Timestamp:    when.Unix(),
		Timezone:     utils.FormatTimezone(offset),
	}
}

// ParseAuthor parses "<name-and-email> <timestamp> <timezone>".
// The last two space-separated tokens are the timestamp and the timezone;
// the name may itself contain spaces.
func ParseAuthor(line string) (Author, error) {
	tzStart := strings.LastIndexByte(line, constants.SpaceByte)
	if tzStart < 0 {
		return Author{}, fmt.Errorf("%w: %q", ErrMalformedAuthorLine, line)
	}
	tsStart := strings.LastIndexByte(line[:tzStart], constants.SpaceByte)
	if tsStart < 0 {
		return Author{}, fmt.Errorf("%w: %q", ErrMalformedAuthorLine, line)
	}

	tsField := line[tsStart+1 : tzStart]
	tzField := line[tzStart+1:]
	if !isDigits(tsField) || !isTimezone(tzField) {
		return Author{}, fmt.Errorf("%w: %q", ErrMalformedAuthorLine, line)
	}
	ts, err := strconv.ParseInt(tsField, 10, 64)
	if err != nil {
		return Author{}, fmt.Errorf("%w: timestamp %q: %w", ErrMalformedAuthorLine, tsField, err)
	}

	return Author{
		NameAndEmail: line[:tsStart],
		Timestamp:    ts,
		Timezone:     tzField,
	}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isTimezone(s string) bool {
	return len(s) == 5 && (s[0] == '+' || s[0] == '-') && isDigits(s[1:])
}

// GitFormat returns the header value written after "author " or "committer ".
func (a Author) GitFormat() string {
	return a.NameAndEmail + " " + strconv.FormatInt(a.Timestamp, 10) + " " + a.Timezone
}

// Name returns the text before the last '<', trimmed.
// Without a '<'/'>' pair the whole identity is the name.
func (a Author) Name() string {
	lt, gt := a.emailBounds()
	if lt < 0 || gt < lt {
		return strings.TrimSpace(a.NameAndEmail)
	}
	return strings.TrimSpace(a.NameAndEmail[:lt])
}

// Email returns the text inside the last '<'/'>' pair, or "" if there is none.
func (a Author) Email() string {
	lt, gt := a.emailBounds()
	if lt < 0 || gt < lt {
		return ""
	}
	return a.NameAndEmail[lt+1 : gt]
}

func (a Author) emailBounds() (int, int) {
	gt := strings.LastIndexByte(a.NameAndEmail, '>')
	if gt < 0 {
		return -1, -1
	}
	return strings.LastIndexByte(a.NameAndEmail[:gt], '<'), gt
}

// When returns the timestamp in the recorded timezone.
// An unparsable timezone falls back to UTC.
func (a Author) When() time.Time {
	t := time.Unix(a.Timestamp, 0)
	if !isTimezone(a.Timezone) {
		return t.UTC()
	}
	hours, _ := strconv.Atoi(a.Timezone[1:3])
	minutes, _ := strconv.Atoi(a.Timezone[3:5])
	offset := hours*constants.SecondsPerHour + minutes*constants.SecondsPerMinute
	if a.Timezone[0] == '-' {
		offset = -offset
	}
	return t.In(time.FixedZone(a.Timezone, offset))
}

func (a Author) String() string {
	return a.NameAndEmail
}
