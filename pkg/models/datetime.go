package models

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"

	"github.com/echopf/echo.go/pkg/constants"
)

// DateValue embeds time.Time. On the wire it is always the 19 character UTC
// form "YYYY-MM-DD HH:MM:SS".
type DateValue struct {
	time.Time
}

// NewDate truncates t to whole seconds in UTC.
func NewDate(t time.Time) DateValue {
	return DateValue{t.UTC().Truncate(time.Second)}
}

// ParseDate parses the wire form of a date. It rejects anything that is not
// exactly 19 characters of digits and separators, or that names an invalid
// calendar date.
func ParseDate(s string) (DateValue, error) {
	if !isDateShaped(s) {
		return DateValue{}, fmt.Errorf("%q is not in the form %s", s, constants.DateLayout)
	}
	t, err := time.ParseInLocation(constants.DateLayout, s, time.UTC)
	if err != nil {
		return DateValue{}, err
	}
	return DateValue{t}, nil
}

func isDateShaped(s string) bool {
	if len(s) != constants.DateLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch i {
		case 4, 7:
			if c != '-' {
				return false
			}
		case 10:
			if c != ' ' {
				return false
			}
		case 13, 16:
			if c != ':' {
				return false
			}
		default:
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

func (d DateValue) Kind() Kind { return KindDate }
func (d DateValue) isValue()   {}

func (d DateValue) String() string {
	return d.UTC().Format(constants.DateLayout)
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d DateValue) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  uint64(DateTag),
		Content: d.String(),
	})
}

func (d *DateValue) UnmarshalCBOR(data []byte) error {
	var s string
	if err := unmarshalTagged(data, DateTag, &s); err != nil {
		return err
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
