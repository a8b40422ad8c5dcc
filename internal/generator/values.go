package generator

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MosYCo/test-data-generate/internal/task"
)

// valueKind is the broad category of a column type.
type valueKind int

const (
	kindText valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDate
	kindTimestamp
	kindUUID
	kindJSON
)

var lengthPattern = regexp.MustCompile(`\((\d+)\)`)

// epoch anchors generated dates so output does not depend on the clock.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func classify(typ string) valueKind {
	t := strings.ToLower(typ)
	switch {
	case t == "uuid":
		return kindUUID
	case strings.HasPrefix(t, "json"):
		return kindJSON
	case strings.Contains(t, "bool"):
		return kindBool
	case strings.Contains(t, "timestamp") || strings.Contains(t, "datetime"):
		return kindTimestamp
	case strings.HasPrefix(t, "date"):
		return kindDate
	case task.IsIntegerType(t):
		return kindInt
	case strings.Contains(t, "real") || strings.Contains(t, "float") || strings.Contains(t, "double") ||
		strings.Contains(t, "numeric") || strings.Contains(t, "decimal") || strings.Contains(t, "money"):
		return kindFloat
	default:
		return kindText
	}
}

// intLimit is the largest value an integer column type can hold.
func intLimit(typ string) int64 {
	t := strings.ToLower(typ)
	switch {
	case strings.Contains(t, "tinyint"):
		return math.MaxInt8
	case strings.Contains(t, "small") || strings.Contains(t, "int2"):
		return math.MaxInt16
	case strings.Contains(t, "mediumint"):
		return 1<<23 - 1
	case strings.Contains(t, "big") || strings.Contains(t, "int8"):
		return math.MaxInt64
	default:
		return math.MaxInt32
	}
}

// maxLength extracts n from varchar(n) style types; 0 means unbounded.
func maxLength(typ string) int {
	m := lengthPattern.FindStringSubmatch(typ)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// source is a deterministic random stream for one table.
type source struct {
	*rand.Rand
	chacha *rand.ChaCha8
}

func newSource(seed int64, table string) *source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(table))

	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], uint64(seed))
	binary.LittleEndian.PutUint64(key[8:16], h.Sum64())

	c := rand.NewChaCha8(key)
	return &source{Rand: rand.New(c), chacha: c}
}

func (r *source) digits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + r.IntN(10)))
	}
	return b.String()
}

func (r *source) pick(items []string) string {
	return items[r.IntN(len(items))]
}

func (r *source) uuid() string {
	id, err := uuid.NewRandomFromReader(r.chacha)
	if err != nil {
		// ChaCha8 reads never fail
		panic(err)
	}
	return id.String()
}

// randomValue produces a value of the column's type, using the column name
// to pick realistic text.
func randomValue(r *source, c *corpus, col task.ColumnSpec, row int) any {
	switch classify(col.Type) {
	case kindInt:
		limit := intLimit(col.Type)
		if limit < math.MaxInt32 {
			return int64(r.IntN(int(min(limit, 1000))) + 1)
		}
		return int64(r.IntN(100000) + 1)
	case kindFloat:
		return math.Round(r.Float64()*100000) / 100
	case kindBool:
		return r.IntN(2) == 1
	case kindDate:
		return epoch.AddDate(0, 0, r.IntN(3*365))
	case kindTimestamp:
		return epoch.Add(time.Duration(r.Int64N(int64(3 * 365 * 24 * time.Hour)))).Truncate(time.Second)
	case kindUUID:
		return r.uuid()
	case kindJSON:
		return fmt.Sprintf(`{"tag": %q, "score": %d}`, r.pick(englishCorpus.words), r.IntN(100))
	default:
		return truncate(textValue(r, c, col.Name, row), maxLength(col.Type))
	}
}

func textValue(r *source, c *corpus, column string, row int) string {
	name := strings.ToLower(column)
	switch {
	case strings.Contains(name, "email") || strings.Contains(name, "mail"):
		return fmt.Sprintf("%s%d@%s", r.pick(emailLocalParts), r.IntN(10000), r.pick(c.domains))
	case strings.Contains(name, "phone") || strings.Contains(name, "mobile") || strings.Contains(name, "tel"):
		return c.phone(r)
	case strings.Contains(name, "city"):
		return r.pick(c.cities)
	case strings.Contains(name, "address") || strings.Contains(name, "street"):
		return fmt.Sprintf("%d %s, %s", r.IntN(999)+1, r.pick(c.streets), r.pick(c.cities))
	case name == "username" || name == "login" || name == "nickname":
		return fmt.Sprintf("%s_%d", r.pick(englishCorpus.words), r.IntN(10000))
	case strings.Contains(name, "first_name") || strings.Contains(name, "given"):
		return r.pick(c.givenNames)
	case strings.Contains(name, "last_name") || strings.Contains(name, "surname"):
		return r.pick(c.surnames)
	case strings.Contains(name, "name"):
		return c.fullName(r.pick(c.givenNames), r.pick(c.surnames))
	case strings.Contains(name, "url") || strings.Contains(name, "website"):
		return fmt.Sprintf("https://%s/%s", r.pick(c.domains), r.pick(englishCorpus.words))
	case strings.Contains(name, "status"):
		return r.pick([]string{"active", "pending", "disabled"})
	default:
		return fmt.Sprintf("%s-%d", r.pick(c.words), row+1)
	}
}

// literalValue converts user supplied text (fixed, pick, example rules)
// into a value of the column's type. Unparsable input is kept as text.
func literalValue(col task.ColumnSpec, s string) any {
	switch classify(col.Type) {
	case kindInt:
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	case kindFloat:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	case kindBool:
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	case kindDate:
		if v, err := time.Parse(time.DateOnly, s); err == nil {
			return v
		}
	case kindTimestamp:
		if v, err := time.Parse(time.DateTime, s); err == nil {
			return v
		}
		if v, err := time.Parse(time.RFC3339, s); err == nil {
			return v.UTC()
		}
	}
	return s
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
