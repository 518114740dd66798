package zstring

import "github.com/cairnwright/zvm/internal/memory"

// defaultUnicodeTable maps ZSCII codes 0x9b..0xdf (155..223) to the
// accented Latin/European letters of the standard extra character set
// (spec §4.C). This is the full 69-entry table.
var defaultUnicodeTable = [69]rune{
	'ä', 'ö', 'ü', 'Ä', 'Ö', 'Ü', 'ß', '»', '«',
	'ë', 'ï', 'ÿ', 'Ë', 'Ï',
	'á', 'é', 'í', 'ó', 'ú', 'ý', 'Á', 'É', 'Í', 'Ó', 'Ú', 'Ý',
	'à', 'è', 'ì', 'ò', 'ù', 'À', 'È', 'Ì', 'Ò', 'Ù',
	'â', 'ê', 'î', 'ô', 'û', 'Â', 'Ê', 'Î', 'Ô', 'Û',
	'å', 'Å', 'ø', 'Ø',
	'ã', 'ñ', 'õ', 'Ã', 'Ñ', 'Õ',
	'æ', 'Æ', 'ç', 'Ç',
	'þ', 'ð', 'Þ', 'Ð',
	'£', 'œ', 'Œ', '¡', '¿',
}

// ZsciiToUnicode maps a ZSCII character code to the Unicode scalar the
// host should render, consulting the story's Unicode translation table
// extension (header-referenced, v5+) in preference to the default table.
func ZsciiToUnicode(zchr uint8, mem *memory.Memory, extensionTableBase uint16) (rune, bool) {
	if zchr >= 155 && zchr <= 223 {
		if table := customUnicodeTable(mem, extensionTableBase); table != nil {
			idx := int(zchr) - 155
			if idx < len(table) {
				return table[idx], true
			}
			return 0, false
		}
		return defaultUnicodeTable[zchr-155], true
	}
	return rune(zchr), zchr >= 32 && zchr <= 126
}

// UnicodeToZscii is the inverse mapping, used when encoding dictionary
// words or buffering raw host input.
func UnicodeToZscii(r rune, mem *memory.Memory, extensionTableBase uint16) (uint8, bool) {
	if r >= 32 && r <= 126 {
		return uint8(r), true
	}
	if table := customUnicodeTable(mem, extensionTableBase); table != nil {
		for i, tr := range table {
			if tr == r {
				return uint8(155 + i), true
			}
		}
		return 0, false
	}
	for i, tr := range defaultUnicodeTable {
		if tr == r {
			return uint8(155 + i), true
		}
	}
	return 0, false
}

// customUnicodeTable reads the game-supplied Unicode translation table
// from the header extension table, if present.
func customUnicodeTable(mem *memory.Memory, extensionTableBase uint16) []rune {
	if extensionTableBase == 0 {
		return nil
	}
	// Extension table word 3 (offset 6 bytes in) holds the address of the
	// Unicode translation table, itself a count byte followed by 16-bit
	// Unicode code points.
	unicodeTableAddr, err := mem.ReadWord(uint32(extensionTableBase) + 6)
	if err != nil || unicodeTableAddr == 0 {
		return nil
	}
	count, err := mem.ReadByte(uint32(unicodeTableAddr))
	if err != nil || count == 0 {
		return nil
	}
	table := make([]rune, count)
	for i := 0; i < int(count); i++ {
		v, err := mem.ReadWord(uint32(unicodeTableAddr) + 1 + uint32(i)*2)
		if err != nil {
			break
		}
		table[i] = rune(v)
	}
	return table
}
