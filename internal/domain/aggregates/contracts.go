package aggregates

import (
	"fmt"
	"strings"
)

// TxMode says whether a write path opens its own transaction.
type TxMode string

const (
	TxOwned  TxMode = "owned"
	TxJoined TxMode = "joined"
)

// Contract documents how a content aggregate writes.
// Locks lists the tables whose rows are taken FOR UPDATE before any
// invariant check; an empty list means the write relies on unique indexes.
type Contract struct {
	Name  string
	Tx    TxMode
	Locks []string
	Notes string
}

// Aggregate is implemented by every content write boundary.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) OwnsTx() bool { return c.Tx == TxOwned }

func (c Contract) Locking(table string) bool {
	for _, t := range c.Locks {
		if strings.EqualFold(t, table) {
			return true
		}
	}
	return false
}

// Validate rejects contracts that could not be honored by a write path.
func (c Contract) Validate() error {
	if !strings.HasPrefix(c.Name, "Content.") {
		return fmt.Errorf("contract %q: name must be Content-scoped", c.Name)
	}
	switch c.Tx {
	case TxOwned, TxJoined:
	default:
		return fmt.Errorf("contract %q: unknown tx mode %q", c.Name, c.Tx)
	}
	if c.Tx == TxJoined && len(c.Locks) == 0 {
		return fmt.Errorf("contract %q: joined writers must name the rows the caller locks", c.Name)
	}
	return nil
}
