package services

import (
	"fmt"
)

// AdminAction is one of MarkPaid, MarkCancelled or ProceedWithCode.
type AdminAction interface {
	Name() string
	adminAction()
}

type MarkPaid struct{}

type MarkCancelled struct{}

// ProceedWithCode marks paid only the orders whose code matches Code.
type ProceedWithCode struct {
	Code string
}

func (MarkPaid) Name() string        { return "mark_paid" }
func (MarkCancelled) Name() string   { return "mark_cancelled" }
func (ProceedWithCode) Name() string { return "proceed_order" }

func (MarkPaid) adminAction()        {}
func (MarkCancelled) adminAction()   {}
func (ProceedWithCode) adminAction() {}

// ParseAdminAction maps a submitted action name to its AdminAction.
func ParseAdminAction(name, code string) (AdminAction, error) {
	switch name {
	case MarkPaid{}.Name():
		return MarkPaid{}, nil
	case MarkCancelled{}.Name():
		return MarkCancelled{}, nil
	case ProceedWithCode{}.Name():
		return ProceedWithCode{Code: code}, nil
	default:
		return nil, fmt.Errorf("unknown admin action %q", name)
	}
}

type MessageLevel string

const (
	LevelSuccess MessageLevel = "success"
	LevelInfo    MessageLevel = "info"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

type ActionResult struct {
	Action  string       `json:"action"`
	Updated int64        `json:"updated"`
	Level   MessageLevel `json:"level"`
	Message string       `json:"message"`
}
