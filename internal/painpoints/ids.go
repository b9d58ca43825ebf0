package painpoints

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDSource produces an id for a pain point that arrived without one.
type IDSource interface {
	NewID(title, description string) string
}

// IDSourceFunc adapts a function to IDSource.
type IDSourceFunc func(title, description string) string

func (f IDSourceFunc) NewID(title, description string) string { return f(title, description) }

var painPointNamespace = uuid.MustParse("6f1f8f63-4c3e-5a0b-9d59-3a3c1b7e2f10")

// ContentIDs derives ids from title and description, so the same pain point keeps
// its id across calls.
var ContentIDs IDSource = IDSourceFunc(func(title, description string) string {
	u := uuid.NewSHA1(painPointNamespace, []byte(strings.TrimSpace(title)+"\x00"+strings.TrimSpace(description)))
	return "pain-" + strings.ReplaceAll(u.String(), "-", "")[:12]
})

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomIDs produces short random ids. Ids are not stable across calls.
var RandomIDs IDSource = IDSourceFunc(func(_, _ string) string {
	var b strings.Builder
	b.WriteString("pain-")
	max := big.NewInt(int64(len(base36)))
	for i := 0; i < 7; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(base36[n.Int64()])
	}
	return b.String()
})

// idAllocator hands out ids that are unique within one processing call.
type idAllocator struct {
	source IDSource
	seen   map[string]int
}

func newIDAllocator(source IDSource, size int) *idAllocator {
	if source == nil {
		source = ContentIDs
	}
	return &idAllocator{source: source, seen: make(map[string]int, size)}
}

// reserve records an explicit id supplied by the caller.
func (a *idAllocator) reserve(id string) {
	a.seen[id]++
}

func (a *idAllocator) generate(title, description string) string {
	id := a.source.NewID(title, description)
	if _, dup := a.seen[id]; !dup {
		a.seen[id] = 1
		return id
	}
	for n := a.seen[id] + 1; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if _, dup := a.seen[candidate]; dup {
			continue
		}
		a.seen[id] = n
		a.seen[candidate] = 1
		return candidate
	}
}
