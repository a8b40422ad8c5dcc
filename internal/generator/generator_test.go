package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MosYCo/test-data-generate/internal/task"
)

func shopTables() []task.TableSpec {
	return []task.TableSpec{
		{
			Name:     "orders",
			RowCount: 40,
			Columns: []task.ColumnSpec{
				{Name: "id", Type: "uuid", IsPrimaryKey: true, GenerationRule: "random"},
				{Name: "user_id", Type: "INTEGER", IsForeignKey: true, ForeignKeyTable: "users", ForeignKeyColumn: "id", GenerationRule: "reference"},
				{Name: "total", Type: "numeric(10,2)", GenerationRule: "random"},
				{Name: "status", Type: "varchar(16)", GenerationRule: "pick:new|paid|shipped"},
				{Name: "created_at", Type: "timestamp", GenerationRule: "random"},
			},
		},
		{
			Name:     "users",
			RowCount: 10,
			Columns: []task.ColumnSpec{
				{Name: "id", Type: "INTEGER", IsPrimaryKey: true, GenerationRule: "auto_increment:100"},
				{Name: "email", Type: "TEXT", Unique: true, GenerationRule: "random"},
				{Name: "name", Type: "varchar(40)", GenerationRule: "random"},
				{Name: "active", Type: "BOOLEAN", GenerationRule: "fixed:true"},
				{Name: "country", Type: "TEXT", Example: "NZ", GenerationRule: "example"},
				{Name: "deleted_at", Type: "timestamp", Nullable: true, GenerationRule: "null"},
			},
		},
	}
}

func TestGenerateOrdersAndCounts(t *testing.T) {
	ds, err := Generate(context.Background(), shopTables(), Options{Seed: 7})
	require.NoError(t, err)

	require.Len(t, ds.Tables, 2)
	assert.Equal(t, "users", ds.Tables[0].Name)
	assert.Equal(t, "orders", ds.Tables[1].Name)
	assert.Len(t, ds.Table("users").Rows, 10)
	assert.Len(t, ds.Table("orders").Rows, 40)
	assert.Equal(t, 50, ds.TotalRows())
}

func TestGenerateRules(t *testing.T) {
	ds, err := Generate(context.Background(), shopTables(), Options{Seed: 7})
	require.NoError(t, err)

	users := ds.Table("users")
	ids := users.ColumnValues("id")
	for i, v := range ids {
		assert.Equal(t, int64(100+i), v)
	}

	emails := map[any]bool{}
	for _, rec := range users.Records() {
		assert.Equal(t, true, rec["active"])
		assert.Equal(t, "NZ", rec["country"])
		assert.Nil(t, rec["deleted_at"])

		email, ok := rec["email"].(string)
		require.True(t, ok)
		assert.Contains(t, email, "@")
		assert.False(t, emails[email], "duplicate email %s", email)
		emails[email] = true

		name := rec["name"].(string)
		assert.LessOrEqual(t, len([]rune(name)), 40)
	}

	for _, rec := range ds.Table("orders").Records() {
		assert.Contains(t, []any{"new", "paid", "shipped"}, rec["status"])
		_, err := uuid.Parse(rec["id"].(string))
		assert.NoError(t, err)
		_, isTime := rec["created_at"].(time.Time)
		assert.True(t, isTime)
		_, isFloat := rec["total"].(float64)
		assert.True(t, isFloat)
	}
}

func TestGenerateReferencesExistInParent(t *testing.T) {
	ds, err := Generate(context.Background(), shopTables(), Options{Seed: 99})
	require.NoError(t, err)

	parentIDs := map[any]bool{}
	for _, v := range ds.Table("users").ColumnValues("id") {
		parentIDs[v] = true
	}
	for _, v := range ds.Table("orders").ColumnValues("user_id") {
		assert.True(t, parentIDs[v], "user_id %v has no matching user", v)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(context.Background(), shopTables(), Options{Seed: 1234})
	require.NoError(t, err)
	b, err := Generate(context.Background(), shopTables(), Options{Seed: 1234})
	require.NoError(t, err)
	c, err := Generate(context.Background(), shopTables(), Options{Seed: 4321})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Table("orders").Rows, c.Table("orders").Rows)
}

func TestGenerateRowCountOverride(t *testing.T) {
	ds, err := Generate(context.Background(), shopTables(), Options{Seed: 1, RowCount: 3})
	require.NoError(t, err)
	assert.Len(t, ds.Table("users").Rows, 3)
	assert.Len(t, ds.Table("orders").Rows, 3)
}

func TestGenerateSelfReference(t *testing.T) {
	tables := []task.TableSpec{{
		Name:     "categories",
		RowCount: 25,
		Columns: []task.ColumnSpec{
			{Name: "id", Type: "INTEGER", IsPrimaryKey: true, GenerationRule: "auto_increment"},
			{Name: "parent_id", Type: "INTEGER", IsForeignKey: true, ForeignKeyTable: "categories", ForeignKeyColumn: "id", GenerationRule: "reference"},
		},
	}}

	ds, err := Generate(context.Background(), tables, Options{Seed: 5})
	require.NoError(t, err)

	for i, row := range ds.Table("categories").Rows {
		parent := row[1].(int64)
		assert.GreaterOrEqual(t, parent, int64(1))
		assert.LessOrEqual(t, parent, int64(i+1), "row %d points at a later row", i)
	}
}

func TestGenerateUniqueReferenceNeedsEnoughParents(t *testing.T) {
	tables := []task.TableSpec{
		fkTable("users"),
		{
			Name:     "profiles",
			RowCount: 5,
			Columns: []task.ColumnSpec{
				{Name: "user_id", Type: "INTEGER", Unique: true, IsForeignKey: true, ForeignKeyTable: "users", ForeignKeyColumn: "id", GenerationRule: "reference"},
			},
		},
	}

	_, err := Generate(context.Background(), tables, Options{Seed: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distinct users rows")

	tables[1].RowCount = 3
	ds, err := Generate(context.Background(), tables, Options{Seed: 1})
	require.NoError(t, err)
	seen := map[any]bool{}
	for _, v := range ds.Table("profiles").ColumnValues("user_id") {
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestGenerateUniqueSmallDomain(t *testing.T) {
	tables := []task.TableSpec{{
		Name:     "codes",
		RowCount: 300,
		Columns: []task.ColumnSpec{
			{Name: "code", Type: "varchar(64)", Unique: true, GenerationRule: "random"},
		},
	}}

	ds, err := Generate(context.Background(), tables, Options{Seed: 3})
	require.NoError(t, err)
	seen := map[any]bool{}
	for _, v := range ds.Table("codes").ColumnValues("code") {
		assert.False(t, seen[v], "duplicate %v", v)
		seen[v] = true
	}
}

func TestGenerateChineseCorpus(t *testing.T) {
	tables := []task.TableSpec{{
		Name:     "people",
		RowCount: 5,
		Columns: []task.ColumnSpec{
			{Name: "name", Type: "TEXT", GenerationRule: "random"},
			{Name: "city", Type: "TEXT", GenerationRule: "random"},
			{Name: "phone", Type: "TEXT", GenerationRule: "random"},
		},
	}}

	ds, err := Generate(context.Background(), tables, Options{Seed: 11, Language: "zh-CN"})
	require.NoError(t, err)
	for _, rec := range ds.Table("people").Records() {
		assert.Contains(t, chineseCorpus.cities, rec["city"])
		phone := rec["phone"].(string)
		assert.Len(t, phone, 11)
		assert.False(t, strings.HasPrefix(phone, "+1"))
	}
}

func TestGenerateRejectsCycle(t *testing.T) {
	_, err := Generate(context.Background(), []task.TableSpec{fkTable("a", "b"), fkTable("b", "a")}, Options{})
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestGenerateRejectsBadRule(t *testing.T) {
	tables := shopTables()
	tables[1].Columns[1].GenerationRule = "sometimes"

	_, err := Generate(context.Background(), tables, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRule))
	assert.Contains(t, err.Error(), "table users")
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, shopTables(), Options{Seed: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClassify(t *testing.T) {
	tests := map[string]valueKind{
		"INTEGER":                  kindInt,
		"bigserial":                kindInt,
		"numeric(10,2)":            kindFloat,
		"double precision":         kindFloat,
		"boolean":                  kindBool,
		"date":                     kindDate,
		"timestamp with time zone": kindTimestamp,
		"DATETIME":                 kindTimestamp,
		"uuid":                     kindUUID,
		"jsonb":                    kindJSON,
		"varchar(255)":             kindText,
		"TEXT":                     kindText,
	}
	for typ, want := range tests {
		assert.Equal(t, want, classify(typ), fmt.Sprintf("classify(%q)", typ))
	}
}

func TestLiteralValue(t *testing.T) {
	assert.Equal(t, int64(42), literalValue(task.ColumnSpec{Type: "int"}, "42"))
	assert.Equal(t, 1.5, literalValue(task.ColumnSpec{Type: "real"}, "1.5"))
	assert.Equal(t, false, literalValue(task.ColumnSpec{Type: "bool"}, "false"))
	assert.Equal(t, "oops", literalValue(task.ColumnSpec{Type: "int"}, "oops"))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), literalValue(task.ColumnSpec{Type: "date"}, "2024-02-29"))
}

func TestGenerateUniqueIntegersFitColumnWidth(t *testing.T) {
	tables := []task.TableSpec{{
		Name:     "codes",
		RowCount: 2000,
		Columns: []task.ColumnSpec{
			{Name: "code", Type: "smallint", Unique: true, GenerationRule: "random"},
		},
	}}

	ds, err := Generate(context.Background(), tables, Options{Seed: 3})
	require.NoError(t, err)

	seen := map[int64]bool{}
	for _, v := range ds.Table("codes").ColumnValues("code") {
		n := v.(int64)
		assert.LessOrEqual(t, n, int64(32767))
		assert.False(t, seen[n], "duplicate %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, 2000)
}

func TestGenerateUniqueIntegersRunOut(t *testing.T) {
	tables := []task.TableSpec{{
		Name:     "flags",
		RowCount: 200,
		Columns: []task.ColumnSpec{
			{Name: "flag", Type: "tinyint", Unique: true, GenerationRule: "random"},
		},
	}}

	_, err := Generate(context.Background(), tables, Options{Seed: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fewer than 200 unique values")
}
