// Package modstr decodes a base-type modifier bitmask into the canonical
// token string the fingerprint and declaration text are built from (spec
// §4.D "Canonical modifier string"). The output is part of the on-disk
// contract: changing the table or the trailing-space rule changes every
// fingerprint already written to a database.
package modstr

import (
	"strings"

	"github.com/camuso/kabiparser/internal/symtree"
)

// namedBit pairs one modifier bit with its token, in the fixed table order
// spec §4.D names explicitly.
type namedBit struct {
	bit  symtree.Modifier
	name string
}

var table = []namedBit{
	{symtree.ModAuto, "auto"},
	{symtree.ModRegister, "register"},
	{symtree.ModStatic, "static"},
	{symtree.ModExtern, "extern"},
	{symtree.ModConst, "const"},
	{symtree.ModVolatile, "volatile"},
	{symtree.ModSigned, "signed"},
	{symtree.ModUnsigned, "unsigned"},
	{symtree.ModChar, "char"},
	{symtree.ModShort, "short"},
	{symtree.ModLong, "long"},
	{symtree.ModLongLong, "long long"},
	{symtree.ModLongLongLong, "long long long"},
	{symtree.ModTypedef, "typedef"},
	{symtree.ModTLS, "tls"},
	{symtree.ModInline, "inline"},
	{symtree.ModAddressable, "addressable"},
	{symtree.ModNoCast, "nocast"},
	{symtree.ModNoDeref, "noderef"},
	{symtree.ModAccessed, "accessed"},
	{symtree.ModToplevel, "toplevel"},
	{symtree.ModAssigned, "assigned"},
	{symtree.ModType, "type"},
	{symtree.ModSafe, "safe"},
	{symtree.ModUsertype, "usertype"},
	{symtree.ModNoreturn, "noreturn"},
	{symtree.ModExplicitlySigned, "explicitly-signed"},
	{symtree.ModBitwise, "bitwise"},
	{symtree.ModPure, "pure"},
}

// keywordBits maps single-token C keyword spellings to their bit, the
// inverse direction from table above: a front end resolving source text
// into a modifier mask needs keyword -> bit, not bit -> canonical string.
// "long" is left out of this map, since it is the one keyword a front end
// sees repeated (plain/long/long long); the caller of BitForKeyword
// handles it.
var keywordBits = map[string]symtree.Modifier{
	"auto":      symtree.ModAuto,
	"register":  symtree.ModRegister,
	"static":    symtree.ModStatic,
	"extern":    symtree.ModExtern,
	"const":     symtree.ModConst,
	"volatile":  symtree.ModVolatile,
	"signed":    symtree.ModSigned,
	"unsigned":  symtree.ModUnsigned,
	"char":      symtree.ModChar,
	"short":     symtree.ModShort,
	"typedef":   symtree.ModTypedef,
	"inline":    symtree.ModInline,
	"_Noreturn": symtree.ModNoreturn,
}

// BitForKeyword resolves one C storage-class/type/qualifier keyword token
// to its modifier bit. "long" is handled by the caller promoting
// ModLong -> ModLongLong -> ModLongLongLong across repeated occurrences
// (spec §4.D's modifier table models "long long" and "long long long" as
// distinct bits, not a repeat count), since BitForKeyword only ever sees
// one token at a time and has no memory of prior tokens in the same
// declaration.
func BitForKeyword(word string) (symtree.Modifier, bool) {
	bit, ok := keywordBits[word]
	return bit, ok
}

// Of decodes mod into the canonical modifier string, applying the fast-path
// rules in order before falling back to the redundant-bit-clearing plus
// table scan. The result has no trailing space when it holds more than one
// word, and exactly one trailing space when it holds exactly one word —
// this asymmetry is intentional and load-bearing (spec §4.D, Open Question
// (a)): it reproduces the original tool's fingerprints byte for byte.
func Of(mod symtree.Modifier) string {
	switch {
	case mod == symtree.ModSigned:
		return "int"
	case mod == symtree.ModUnsigned:
		return "unsigned int"
	case mod == symtree.ModSigned|symtree.ModChar:
		return "char"
	case mod == symtree.ModSigned|symtree.ModLong:
		return "long"
	case mod == symtree.ModSigned|symtree.ModLongLong:
		return "long long"
	case mod == symtree.ModSigned|symtree.ModLongLongLong:
		return "long long long"
	}

	// Clear redundant long-width bits, widest first.
	if mod&symtree.ModLongLongLong != 0 {
		mod &^= symtree.ModLongLong | symtree.ModLong
	} else if mod&symtree.ModLongLong != 0 {
		mod &^= symtree.ModLong
	}

	var words []string
	for _, nb := range table {
		if mod&nb.bit != 0 {
			words = append(words, nb.name)
		}
	}

	if len(words) > 1 {
		return strings.Join(words, " ")
	}
	if len(words) == 1 {
		return words[0] + " "
	}
	return ""
}
