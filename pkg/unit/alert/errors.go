package alert

import "errors"

var (
	ErrRuleNotFound    = errors.New("rule not found")
	ErrAlertNotFound   = errors.New("alert not found")
	ErrRuleExists      = errors.New("rule already exists")
	ErrAlertExists     = errors.New("unresolved alert already exists for rule")
	ErrNoSample        = errors.New("no sample in window")
	ErrInvalidRuleID   = errors.New("invalid rule id")
	ErrInvalidAlertID  = errors.New("invalid alert id")
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrInvalidOperator = errors.New("invalid threshold operator")
	ErrInvalidWindow   = errors.New("evaluation window must be positive")
	ErrInvalidSource   = errors.New("invalid metric source")
)
