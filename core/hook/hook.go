package hook

import (
	"context"

	"github.com/jxo-me/ddnsync/consts"
)

// Event describes one record that was created or changed.
type Event struct {
	Domain string
	NewIP  string
	// empty when the record was created
	OldIP  string
	Status consts.UpdateStatusType
}

type IHook interface {
	String() string
	ExecHook(ctx context.Context, event *Event) error
}
