// Developer: Ali Naqvi
//
// This program or package and any associated files are licensed under the
// Apache License, Version 2.0 (the "License"); you may not use these files
// except in compliance with the License. You can get a copy of the License
// at: http://www.apache.org/licenses/LICENSE-2.0.
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Option flag bit of BIFF strings: set when characters are stored as
// UTF-16LE, clear when every character was squeezed into one byte.
const UNCOMPRESSED_FLAG = 0x01

// GetFromCompressedUnicode decodes nChars single byte (ISO-8859-1) characters.
func GetFromCompressedUnicode(data []byte, offset, nChars int) string {
	// ISO-8859-1 maps every byte, decoding can not fail
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(data[offset : offset+nChars])
	return string(s)
}

// GetFromUnicodeLE decodes nChars UTF-16LE code units.
func GetFromUnicodeLE(data []byte, offset, nChars int) string {
	units := make([]uint16, nChars)
	for i := range units {
		units[i] = uint16(GetUShort(data, offset+i*SHORT_SIZE))
	}
	return string(utf16.Decode(units))
}

// CompressedUnicodeBytes encodes s as ISO-8859-1. Use HasMultibyte first;
// characters above U+00FF make the encoder fail.
func CompressedUnicodeBytes(s string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, CapacityErrorf("%q can not be stored as compressed unicode: %v", s, err)
	}
	return b, nil
}

func UnicodeLEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, len(units)*SHORT_SIZE)
	for i, u := range units {
		PutShort(b, i*SHORT_SIZE, int(u))
	}
	return b
}

// HasMultibyte reports whether s needs the uncompressed representation.
func HasMultibyte(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return true
		}
	}
	return false
}

// UnicodeLength is the number of UTF-16 code units of s, which is what
// every character count on disk refers to.
func UnicodeLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// ReadStringChars reads nChars characters in the given representation.
func ReadStringChars(in *LittleEndianInput, nChars int, compressed bool) string {
	if compressed {
		b := in.take(nChars)
		if b == nil {
			return ""
		}
		return GetFromCompressedUnicode(b, 0, nChars)
	}
	b := in.take(nChars * SHORT_SIZE)
	if b == nil {
		return ""
	}
	return GetFromUnicodeLE(b, 0, nChars)
}

// ReadUnicodeString reads a 16 bit character count, an option byte and the
// characters.
func ReadUnicodeString(in *LittleEndianInput) string {
	nChars := in.ReadUShort()
	flag := in.ReadUByte()
	return ReadStringChars(in, nChars, flag&UNCOMPRESSED_FLAG == 0)
}

// WriteUnicodeString is the inverse of ReadUnicodeString. The compressed
// form is chosen whenever every character fits in one byte.
func WriteUnicodeString(out *LittleEndianOutput, s string) {
	out.WriteShort(UnicodeLength(s))
	if HasMultibyte(s) {
		out.WriteUByte(UNCOMPRESSED_FLAG)
		out.Write(UnicodeLEBytes(s))
		return
	}
	out.WriteUByte(0)
	b, _ := CompressedUnicodeBytes(s)
	out.Write(b)
}
