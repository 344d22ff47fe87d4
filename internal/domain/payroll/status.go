package payroll

import (
	"fmt"
	"strings"
)

// Status is the payslip visibility state. The zero value is not a valid status.
type Status uint8

const (
	StatusDraft Status = iota + 1
	StatusPublished
)

// Publish is the only transition: any valid status moves to published.
func (s Status) Publish() Status {
	return StatusPublished
}

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusPublished:
		return "PUBLISHED"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func ParseStatus(value string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DRAFT":
		return StatusDraft, nil
	case "PUBLISHED":
		return StatusPublished, nil
	}
	return 0, fmt.Errorf("unknown payslip status %q", value)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid payslip status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
