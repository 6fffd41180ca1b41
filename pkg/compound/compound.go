package compound

import "strings"

// Lookup maps "class - compound" names to one-character display symbols.
// The stint tracker captures a label once per stint by concatenating the
// symbol of each wheel's compound.
type Lookup struct {
	symbols map[string]string
}

const unknownSymbol = "?"

// common compound names shipped as defaults; the settings store overlays
// per-class entries on top of these.
var defaultSymbols = map[string]string{
	"Soft":         "S",
	"Medium":       "M",
	"Hard":         "H",
	"Intermediate": "I",
	"Wet":          "W",
}

func NewLookup(overrides map[string]string) *Lookup {
	symbols := make(map[string]string, len(defaultSymbols)+len(overrides))
	for name, symbol := range defaultSymbols {
		symbols[name] = symbol
	}
	for name, symbol := range overrides {
		symbols[name] = symbol
	}
	return &Lookup{symbols: symbols}
}

// Symbol resolves a single compound: the class-qualified entry wins, then
// the bare compound name, then the first letter of the name.
func (l *Lookup) Symbol(className, compoundName string) string {
	if s, ok := l.symbols[className+" - "+compoundName]; ok {
		return s
	}
	if s, ok := l.symbols[compoundName]; ok {
		return s
	}
	if compoundName != "" {
		return strings.ToUpper(compoundName[:1])
	}
	return unknownSymbol
}

// Label concatenates one symbol per wheel into the fixed-width stint code.
func (l *Lookup) Label(className string, compounds [4]string) string {
	var b strings.Builder
	for _, name := range compounds {
		b.WriteString(l.Symbol(className, name))
	}
	return b.String()
}
