package generator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MosYCo/test-data-generate/internal/task"
)

// ErrCycle is returned when foreign keys between tables form a cycle.
var ErrCycle = errors.New("foreign key cycle")

// Levels groups tables so that every table only references tables in earlier
// levels (or itself). Tables in the same level are independent of each other.
// References to tables outside the set are ignored.
func Levels(tables []task.TableSpec) ([][]string, error) {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	deps := make(map[string]map[string]bool, len(tables))
	for _, t := range tables {
		deps[t.Name] = map[string]bool{}
		for _, col := range t.Columns {
			ref := col.ForeignKeyTable
			if !col.IsForeignKey || ref == "" || ref == t.Name || !known[ref] {
				continue
			}
			deps[t.Name][ref] = true
		}
	}

	var levels [][]string
	placed := make(map[string]bool, len(tables))
	for len(placed) < len(tables) {
		var level []string
		for _, t := range tables {
			if placed[t.Name] {
				continue
			}
			ready := true
			for dep := range deps[t.Name] {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, t.Name)
			}
		}

		if len(level) == 0 {
			var stuck []string
			for _, t := range tables {
				if !placed[t.Name] {
					stuck = append(stuck, t.Name)
				}
			}
			sort.Strings(stuck)
			return nil, fmt.Errorf("%w between tables: %s", ErrCycle, strings.Join(stuck, ", "))
		}

		for _, name := range level {
			placed[name] = true
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// Order returns table names so that referenced tables come before the tables
// referencing them.
func Order(tables []task.TableSpec) ([]string, error) {
	levels, err := Levels(tables)
	if err != nil {
		return nil, err
	}
	var order []string
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}
