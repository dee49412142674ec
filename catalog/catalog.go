// Package catalog resolves content ids to the category table that stores them
// and maintains the plan_count counter on those tables.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrContentNotFound is returned when the content index has no entry for an id.
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidTargetTable is returned when the index points outside the category tables.
	ErrInvalidTargetTable = errors.New("invalid target table")
)

// Table is the name of a category table. Values only come from ParseTable or
// the constants below, so a Table is always safe to place in a query.
type Table string

const (
	VisitSites Table = "visit_main_fix"
	Festivals  Table = "festival_main"
	Lodging    Table = "stay_main"
	Culture    Table = "culture_main"
	Food       Table = "food_main"
	Leisure    Table = "leports_main"
	Shopping   Table = "shopping_main"
)

// Tables lists every category table.
var Tables = []Table{VisitSites, Festivals, Lodging, Culture, Food, Leisure, Shopping}

// ParseTable validates name against the category tables.
func ParseTable(name string) (Table, error) {
	for _, t := range Tables {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTargetTable, name)
}

func (t Table) String() string { return string(t) }

// Index looks up the raw target table of a content id. Implementations return
// ErrContentNotFound when the id is unknown.
type Index interface {
	TargetTable(ctx context.Context, contentID int64) (string, error)
}

// Cache stores raw target table names by content id.
type Cache interface {
	Get(ctx context.Context, contentID int64) (string, bool)
	Set(ctx context.Context, contentID int64, table string)
}
