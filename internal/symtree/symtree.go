// Package symtree defines the symbol/type-chain contract that the type-graph
// builder consumes. It is deliberately independent of any concrete C parser:
// spec §1 treats the parser front end as an external collaborator, and this
// package is the seam — any front end that can produce a Symbol tree can
// feed the builder.
package symtree

// Kind is the tagged variant over the C front end's declaration shapes,
// following spec §9's "polymorphism over front-end symbol kinds" note.
type Kind int

const (
	BadKind Kind = iota
	BaseType
	Ptr
	Fn
	Array
	Struct
	Union
	Enum
	Typedef
	Node
	Member
	Bitfield
	Label
	Restrict
	Fouled
	Keyword
)

// Modifier bits, positioned to match the canonical order in spec §4.D's
// modifier table. internal/modstr owns the string projection; this package
// only owns the bit positions so both agree on what "bit 5" means.
type Modifier uint64

const (
	ModAuto Modifier = 1 << iota
	ModRegister
	ModStatic
	ModExtern
	ModConst
	ModVolatile
	ModSigned
	ModUnsigned
	ModChar
	ModShort
	ModLong
	ModLongLong
	ModLongLongLong
	ModTypedef
	ModTLS
	ModInline
	ModAddressable
	ModNoCast
	ModNoDeref
	ModAccessed
	ModToplevel
	ModAssigned
	ModType
	ModSafe
	ModUsertype
	ModNoreturn
	ModExplicitlySigned
	ModBitwise
	ModPure
)

// Symbol is one node of the base-type chain the front end exposes for a
// declaration: an identifier (possibly empty), a link kind, a modifier
// mask (meaningful only when Kind == BaseType), the next link in the
// chain, and — for compound types and functions — a member or argument
// list.
type Symbol struct {
	Ident     string
	Kind      Kind
	Modifiers Modifier
	BaseType  *Symbol
	Members   []*Symbol
	Arguments []*Symbol
}

// TranslationUnit is one preprocessed C file's worth of top-level symbols.
type TranslationUnit struct {
	File    string
	Symbols []*Symbol
}

// TypeName returns the keyword a type of this kind is spelled with
// ("struct", "union", "enum"). The tag or typedef name itself is carried in
// Symbol.Ident. Empty for every other kind, Typedef included.
func (k Kind) TypeName() string {
	switch k {
	case Struct:
		return "struct"
	case Union:
		return "union"
	case Enum:
		return "enum"
	default:
		return ""
	}
}

// HasMemberList reports whether s has a non-empty Members list (structs and
// unions). A function's Arguments are not counted.
func (s *Symbol) HasMemberList() bool {
	return len(s.Members) > 0
}
