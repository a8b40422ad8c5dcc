package export

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"gopkg.in/yaml.v3"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/driver"
	"github.com/MosYCo/test-data-generate/internal/generator"
)

func writeJSON(w io.Writer, ds *generator.Dataset) error {
	doc := make(map[string][]map[string]any, len(ds.Tables))
	for _, t := range ds.Tables {
		doc[t.Name] = plainRecords(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeYAML(w io.Writer, ds *generator.Dataset) error {
	doc := make(map[string][]map[string]any, len(ds.Tables))
	for _, t := range ds.Tables {
		doc[t.Name] = plainRecords(t)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func writeCSV(w io.Writer, t *generator.TableData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = textValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeXML emits <dataset><table name=".."><row><field name="..">v</field></row></table></dataset>.
// NULL fields carry null="true".
func writeXML(w io.Writer, ds *generator.Dataset) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "dataset"}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	for _, t := range ds.Tables {
		table := xml.StartElement{Name: xml.Name{Local: "table"}, Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: t.Name}}}
		if err := enc.EncodeToken(table); err != nil {
			return err
		}
		for _, row := range t.Rows {
			rowEl := xml.StartElement{Name: xml.Name{Local: "row"}}
			if err := enc.EncodeToken(rowEl); err != nil {
				return err
			}
			for i, v := range row {
				field := xml.StartElement{Name: xml.Name{Local: "field"}, Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: t.Columns[i]}}}
				if v == nil {
					field.Attr = append(field.Attr, xml.Attr{Name: xml.Name{Local: "null"}, Value: "true"})
				}
				if err := enc.EncodeToken(field); err != nil {
					return err
				}
				if v != nil {
					if err := enc.EncodeToken(xml.CharData(textValue(v))); err != nil {
						return err
					}
				}
				if err := enc.EncodeToken(field.End()); err != nil {
					return err
				}
			}
			if err := enc.EncodeToken(rowEl.End()); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(table.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeSQL(w io.Writer, ds *generator.Dataset, opts Options) error {
	script := SQLScript(ds, opts.Dialect, opts.Schema)
	if opts.Dialect.Name() == driver.TypePostgres {
		if err := VerifyPostgres(script); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, script)
	return err
}

// SQLScript renders the dataset as INSERT statements, one per row, grouped by
// table. Tables found in schema get a CREATE TABLE first, in dataset order so
// referenced tables are created before the tables pointing at them.
func SQLScript(ds *generator.Dataset, dialect Dialect, schema []database.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Generated by tdg for %s\n", dialect.Name())

	if len(schema) > 0 {
		created := 0
		for _, t := range ds.Tables {
			for i := range schema {
				if schema[i].Name != t.Name {
					continue
				}
				stmt, desc := dialect.CreateTable(schema[i])
				if created == 0 {
					b.WriteString("\n")
				}
				fmt.Fprintf(&b, "-- %s\n%s;\n", desc, stmt)
				created++
			}
		}
	}

	for _, t := range ds.Tables {
		fmt.Fprintf(&b, "\n-- %s (%d rows)\n", t.Name, len(t.Rows))
		for _, row := range t.Rows {
			b.WriteString(database.InsertStatement(dialect, t.Name, t.Columns, row))
			b.WriteString(";\n")
		}
	}
	return b.String()
}

// VerifyPostgres parses script with the PostgreSQL parser and checks that it
// only contains CREATE TABLE and INSERT statements.
func VerifyPostgres(script string) error {
	tree, err := pg_query.Parse(script)
	if err != nil {
		return fmt.Errorf("generated SQL does not parse: %w", err)
	}
	for i, raw := range tree.Stmts {
		switch raw.Stmt.Node.(type) {
		case *pg_query.Node_InsertStmt, *pg_query.Node_CreateStmt:
		default:
			return fmt.Errorf("generated SQL statement %d is not a CREATE TABLE or INSERT", i+1)
		}
	}
	return nil
}
