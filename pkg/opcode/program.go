package opcode

import (
	"fmt"
	"sort"
	"strings"
)

// Program is a compiled script: an index-addressed instruction arena plus
// a flat label table mapping names to instruction indices.
// A Program is read-only once the compiler returns it.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// At returns the instruction at pc.
func (p *Program) At(pc int) Instruction {
	return p.Instructions[pc]
}

// Lookup resolves a label to its instruction index.
func (p *Program) Lookup(label string) (int, bool) {
	pc, ok := p.Labels[label]
	return pc, ok
}

// String returns a listing with one instruction per line, prefixed by
// its index, and label declarations where they bind.
func (p *Program) String() string {
	byIndex := make(map[int][]string, len(p.Labels))
	for name, pc := range p.Labels {
		byIndex[pc] = append(byIndex[pc], name)
	}

	var b strings.Builder
	for pc := 0; pc <= len(p.Instructions); pc++ {
		names := byIndex[pc]
		sort.Strings(names)
		for _, name := range names {
			b.WriteString("LABEL \"")
			b.WriteString(name)
			b.WriteString("\"\n")
		}
		if pc == len(p.Instructions) {
			break
		}
		fmt.Fprintf(&b, "%4d  %s\n", pc, p.Instructions[pc])
	}
	return b.String()
}
