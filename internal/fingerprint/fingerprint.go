// Package fingerprint computes the 32-bit identity used to key every
// declaration node in the type graph.
package fingerprint

import "hash/crc32"

// ieeeTable is the reflected CRC-32 table for polynomial 0xEDB88320. Of
// runs it as a raw CRC: initial value 0, no XOR-out. That is not what
// crc32.ChecksumIEEE computes (it inverts the register before and after),
// so the loop is spelled out here. The fingerprint rule (spec §4.A) is
// load-bearing: every on-disk CRC depends on it never changing.
var ieeeTable = crc32.MakeTable(0xEDB88320)

// Of returns the fingerprint of a declaration string. Builder and query
// must call this and nothing else — a second hash function would silently
// break every cross-reference in a persisted graph.
func Of(decl string) uint32 {
	var crc uint32
	for i := 0; i < len(decl); i++ {
		crc = ieeeTable[byte(crc)^decl[i]] ^ (crc >> 8)
	}
	return crc
}
