// Package generator produces rows for a task's tables according to each
// column's generation rule, keeping foreign keys consistent.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/MosYCo/test-data-generate/internal/logging"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// uniqueAttempts bounds how often a unique column re-rolls a duplicate value.
const uniqueAttempts = 32

// Options tune a generation run.
type Options struct {
	// Seed makes the output reproducible; equal seeds give equal datasets.
	Seed int64
	// Language selects the name and city corpus (BCP 47 tag).
	Language string
	// RowCount overrides every table's row count when positive.
	RowCount int
	Logger   *slog.Logger
}

// TableData holds the generated rows of one table.
type TableData struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// Dataset is the result of a generation run. Tables are in dependency order.
type Dataset struct {
	Tables []*TableData
}

// Table returns the generated data for name, or nil.
func (d *Dataset) Table(name string) *TableData {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TotalRows counts rows across all tables.
func (d *Dataset) TotalRows() int {
	total := 0
	for _, t := range d.Tables {
		total += len(t.Rows)
	}
	return total
}

// ColumnValues returns every value generated for a column.
func (t *TableData) ColumnValues(column string) []any {
	idx := -1
	for i, c := range t.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Records returns rows as column-keyed maps.
func (t *TableData) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			rec[c] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Generate produces rows for every table. Tables that do not depend on each
// other are generated concurrently.
func Generate(ctx context.Context, tables []task.TableSpec, opts Options) (*Dataset, error) {
	logger := logging.OrDiscard(opts.Logger).With("component", "generator")

	for _, t := range tables {
		for _, col := range t.Columns {
			if err := CheckRule(col); err != nil {
				return nil, fmt.Errorf("table %s: %w", t.Name, err)
			}
		}
	}

	levels, err := Levels(tables)
	if err != nil {
		return nil, err
	}

	specs := make(map[string]task.TableSpec, len(tables))
	for _, t := range tables {
		specs[t.Name] = t
	}

	c := corpusFor(opts.Language)
	done := make(map[string]*TableData, len(tables))
	dataset := &Dataset{}

	for depth, level := range levels {
		results := make([]*TableData, len(level))
		g, gctx := errgroup.WithContext(ctx)

		for i, name := range level {
			spec := specs[name]
			rows := spec.RowCount
			if opts.RowCount > 0 {
				rows = opts.RowCount
			}

			g.Go(func() error {
				tg := &tableGenerator{
					spec:    spec,
					rows:    rows,
					src:     newSource(opts.Seed, spec.Name),
					corpus:  c,
					parents: done,
				}
				data, err := tg.run(gctx)
				if err != nil {
					return fmt.Errorf("table %s: %w", spec.Name, err)
				}
				results[i] = data
				logger.Debug("generated table", "table", spec.Name, "rows", len(data.Rows), "level", depth)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		// Parents are only written between levels
		for _, data := range results {
			done[data.Name] = data
			dataset.Tables = append(dataset.Tables, data)
		}
	}

	logger.Info("generation finished", "tables", len(dataset.Tables), "rows", dataset.TotalRows(), "seed", opts.Seed)
	return dataset, nil
}

type tableGenerator struct {
	spec    task.TableSpec
	rows    int
	src     *source
	corpus  *corpus
	parents map[string]*TableData
}

type columnPlan struct {
	col     task.ColumnSpec
	rule    Rule
	next    int64 // auto_increment counter
	seen    map[string]bool
	parent  []any // reference pool
	perm    []int // unique reference draw order
	selfRef int   // index of the referenced column when referencing own table
}

func (g *tableGenerator) run(ctx context.Context) (*TableData, error) {
	plans, err := g.plan()
	if err != nil {
		return nil, err
	}

	data := &TableData{
		Name:    g.spec.Name,
		Columns: g.spec.ColumnNames(),
		Rows:    make([][]any, 0, g.rows),
	}

	for i := 0; i < g.rows; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row := make([]any, len(plans))
		var selfRefs []int
		for j, p := range plans {
			if p.selfRef >= 0 {
				selfRefs = append(selfRefs, j)
				continue
			}
			v, err := g.value(p, i)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}

		// Self references point at this row or an earlier one
		for _, j := range selfRefs {
			ref := plans[j].selfRef
			target := g.src.IntN(i + 1)
			if target == i {
				row[j] = row[ref]
			} else {
				row[j] = data.Rows[target][ref]
			}
		}

		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

func (g *tableGenerator) plan() ([]*columnPlan, error) {
	plans := make([]*columnPlan, len(g.spec.Columns))
	for i, col := range g.spec.Columns {
		rule, err := ParseRule(col.GenerationRule)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		p := &columnPlan{col: col, rule: rule, next: rule.Start, selfRef: -1}
		if col.Unique || col.IsPrimaryKey {
			p.seen = map[string]bool{}
		}

		if rule.Kind == task.RuleReference {
			if err := g.bindReference(p); err != nil {
				return nil, err
			}
		}
		plans[i] = p
	}
	return plans, nil
}

func (g *tableGenerator) bindReference(p *columnPlan) error {
	col := p.col
	if col.ForeignKeyTable == g.spec.Name {
		for i, c := range g.spec.Columns {
			if c.Name == col.ForeignKeyColumn {
				p.selfRef = i
				return nil
			}
		}
		return fmt.Errorf("column %s references missing column %s", col.Name, col.ForeignKeyColumn)
	}

	parent, ok := g.parents[col.ForeignKeyTable]
	if !ok {
		return fmt.Errorf("column %s references table %s which is not generated", col.Name, col.ForeignKeyTable)
	}
	p.parent = parent.ColumnValues(col.ForeignKeyColumn)
	if p.parent == nil {
		return fmt.Errorf("column %s references missing column %s.%s", col.Name, col.ForeignKeyTable, col.ForeignKeyColumn)
	}
	if len(p.parent) == 0 {
		return fmt.Errorf("column %s references table %s which has no rows", col.Name, col.ForeignKeyTable)
	}

	if p.seen != nil {
		if g.rows > len(p.parent) {
			return fmt.Errorf("unique column %s needs %d distinct %s rows, only %d generated", col.Name, g.rows, col.ForeignKeyTable, len(p.parent))
		}
		p.perm = g.src.Perm(len(p.parent))
	}
	return nil
}

func (g *tableGenerator) value(p *columnPlan, row int) (any, error) {
	switch p.rule.Kind {
	case task.RuleAutoIncrement:
		v := p.next
		p.next++
		return v, nil
	case task.RuleNull:
		return nil, nil
	case task.RuleReference:
		if p.perm != nil {
			return p.parent[p.perm[row]], nil
		}
		return p.parent[g.src.IntN(len(p.parent))], nil
	case task.RuleFixed:
		return literalValue(p.col, p.rule.Value), nil
	case task.RuleExample:
		return literalValue(p.col, p.col.Example), nil
	case task.RulePick:
		return literalValue(p.col, g.src.pick(p.rule.Choices)), nil
	}

	// random
	if p.seen == nil {
		if p.col.Nullable && g.src.IntN(20) == 0 {
			return nil, nil
		}
		return randomValue(g.src, g.corpus, p.col, row), nil
	}

	for attempt := 0; attempt < uniqueAttempts; attempt++ {
		v := randomValue(g.src, g.corpus, p.col, row)
		key := fmt.Sprint(v)
		if !p.seen[key] {
			p.seen[key] = true
			return v, nil
		}
	}
	return g.forceUnique(p, row)
}

// nextUnusedInt returns preferred when it fits under limit and is unused,
// otherwise the smallest unused value in [1, limit].
func nextUnusedInt(seen map[string]bool, preferred, limit int64) (int64, bool) {
	if preferred <= limit && !seen[strconv.FormatInt(preferred, 10)] {
		return preferred, true
	}
	for n := int64(1); n <= limit; n++ {
		if !seen[strconv.FormatInt(n, 10)] {
			return n, true
		}
	}
	return 0, false
}

// forceUnique derives a value from the row number once random draws keep colliding.
func (g *tableGenerator) forceUnique(p *columnPlan, row int) (any, error) {
	var v any
	switch classify(p.col.Type) {
	case kindInt:
		n, ok := nextUnusedInt(p.seen, int64(100000+row), intLimit(p.col.Type))
		if !ok {
			return nil, fmt.Errorf("column %s: %s holds fewer than %d unique values", p.col.Name, p.col.Type, g.rows)
		}
		v = n
	case kindText:
		v = truncate(fmt.Sprintf("%s-%s", randomValue(g.src, g.corpus, p.col, row), strconv.Itoa(row+1)), maxLength(p.col.Type))
	case kindUUID:
		v = g.src.uuid()
	default:
		return nil, fmt.Errorf("column %s: cannot produce %d unique %s values", p.col.Name, g.rows, p.col.Type)
	}

	key := fmt.Sprint(v)
	if p.seen[key] {
		return nil, fmt.Errorf("column %s: ran out of unique values after %d rows", p.col.Name, row)
	}
	p.seen[key] = true
	return v, nil
}
