package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout used for time values in SQL literals and exports.
const TimestampLayout = "2006-01-02 15:04:05"

// QuoteString wraps s in single quotes, doubling embedded quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteDoubled wraps an identifier in double quotes, doubling embedded quotes.
func QuoteDoubled(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// StandardLiteral renders common Go values as ANSI SQL literals.
// trueLit and falseLit let dialects choose their boolean spelling.
func StandardLiteral(value any, trueLit, falseLit string) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return QuoteString(v)
	case bool:
		if v {
			return trueLit
		}
		return falseLit
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return QuoteString(v.UTC().Format(TimestampLayout))
	case []byte:
		return QuoteString(string(v))
	case fmt.Stringer:
		return QuoteString(v.String())
	default:
		return QuoteString(fmt.Sprint(v))
	}
}
