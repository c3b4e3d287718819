package runtime

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// Symbol table for interned names. Every distinct spelling exists exactly
// once per table, thus symbols may be compared by pointer identity.
//

// --- Symbols ---------------------------------------------------------------

// Symbol is the canonical representation of a name. Symbol cells on the heap
// reference a Symbol, they never copy its name. Two symbol cells denote the same
// symbol iff their *Symbol pointers are identical.
//
type Symbol struct {
	name string
	next *Symbol // bucket chain
}

// Name gets the symbol's spelling.
func (s *Symbol) Name() string {
	return s.name
}

// String is a debug Stringer for symbols.
func (s *Symbol) String() string {
	return fmt.Sprintf("<sym '%s'>", s.name)
}

// === Symbol Tables =========================================================

// NBuckets is the fixed number of hash buckets of a symbol table.
const NBuckets = 256

// SymbolTable interns strings. It is a fixed-bucket hash table with chained
// buckets. Entries are never deleted.
type SymbolTable struct {
	buckets [NBuckets]*Symbol
	count   int
}

// NewSymbolTable creates an empty symbol table.
//
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// hash is a multiplicative rolling hash over the bytes of s.
func hash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}

// Intern returns the canonical symbol for name, creating it on the fly.
// Every string has exactly one symbol per table, the empty string included.
//
func (t *SymbolTable) Intern(name string) *Symbol {
	h := hash(name) % NBuckets
	for sym := t.buckets[h]; sym != nil; sym = sym.next {
		if sym.name == name {
			return sym
		}
	}
	// no match found. add to the bucket.
	sym := &Symbol{name: name, next: t.buckets[h]}
	t.buckets[h] = sym
	t.count++
	tracer().Debugf("interned symbol '%s' in bucket %d", name, h)
	return sym
}

// Peek checks for a symbol in the table without interning it.
// Returns the symbol and true, or nil and false.
//
func (t *SymbolTable) Peek(name string) (*Symbol, bool) {
	h := hash(name) % NBuckets
	for sym := t.buckets[h]; sym != nil; sym = sym.next {
		if sym.name == name {
			return sym, true
		}
	}
	return nil, false
}

// Size counts the symbols in a symbol table.
func (t *SymbolTable) Size() int {
	return t.count
}

// Each iterates over each symbol in the table, executing a mapper function.
// Iteration order is bucket order.
func (t *SymbolTable) Each(mapper func(*Symbol)) {
	for _, sym := range t.buckets {
		for ; sym != nil; sym = sym.next {
			mapper(sym)
		}
	}
}

// Names returns the spellings of all interned symbols, sorted.
func (t *SymbolTable) Names() []string {
	set := treeset.NewWith(utils.StringComparator)
	t.Each(func(sym *Symbol) {
		set.Add(sym.name)
	})
	names := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		names = append(names, v.(string))
	}
	return names
}
