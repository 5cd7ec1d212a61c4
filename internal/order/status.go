package order

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the order lifecycle position, stored as a SMALLINT in [-1, 4].
type Status int

const (
	StatusRefused         Status = -1
	StatusWaitingApproval Status = 0
	StatusApproved        Status = 1
	StatusPayed           Status = 2
	StatusInTheWay        Status = 3
	StatusDelivered       Status = 4
)

var ErrStatusCannotAdvance = errors.New("order status cannot be increased")

var statusMessages = map[Status]string{
	StatusRefused:         "order refused",
	StatusWaitingApproval: "order waiting approval",
	StatusApproved:        "order approved",
	StatusPayed:           "order payed",
	StatusInTheWay:        "order in the way",
	StatusDelivered:       "order delivered",
}

// Message returns the human readable message for s. ok is false for
// integers outside the lifecycle.
func (s Status) Message() (string, bool) {
	msg, ok := statusMessages[s]
	return msg, ok
}

func (s Status) String() string {
	if msg, ok := s.Message(); ok {
		return msg
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Next returns the status an advance moves s to. Only the non-terminal
// forward states (0 through 3) can advance.
func (s Status) Next() (Status, error) {
	if s < StatusWaitingApproval || s >= StatusDelivered {
		return s, ErrStatusCannotAdvance
	}
	return s + 1, nil
}

// CancelPolicy selects the status a cancelled order lands in.
type CancelPolicy int

const (
	// CancelResetsToWaiting sends the order back to waiting approval.
	CancelResetsToWaiting CancelPolicy = iota
	// CancelRefuses marks the order refused.
	CancelRefuses
)

var ErrInvalidCancelPolicy = errors.New("invalid cancel policy")

func (p CancelPolicy) Target() Status {
	if p == CancelRefuses {
		return StatusRefused
	}
	return StatusWaitingApproval
}

func (p CancelPolicy) String() string {
	if p == CancelRefuses {
		return "refuse"
	}
	return "reset"
}

// ParseCancelPolicy maps the ORDER_CANCEL_POLICY value to a policy.
func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset":
		return CancelResetsToWaiting, nil
	case "refuse":
		return CancelRefuses, nil
	default:
		return CancelResetsToWaiting, fmt.Errorf("%w: %q", ErrInvalidCancelPolicy, s)
	}
}
