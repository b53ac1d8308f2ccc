package spec

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tile files carry obfuscated names so they interoperate with the
// originating application; there is no security purpose. The name is
// built from the tile id (tileY*512 + tileX) as
//
//	<first 4 hex chars of md5(decimal id)> <digits via maskDigits> <last 2 digits via maskSuffix>
//
// and decodes by reversing the digit substitution on the tail.
const (
	maskDigits = "olhwjsktri"
	maskSuffix = "eizxdwknmo"

	filenamePrefixLength = 4
	filenameSuffixLength = 2
)

var ErrInvalidFilename = errors.New("invalid tile filename")

// EncodeTileFilename returns the on-disk filename for a tile id.
func EncodeTileFilename(id int) string {
	digits := strconv.Itoa(id)

	sum := md5.Sum([]byte(digits))
	prefix := hex.EncodeToString(sum[:])[:filenamePrefixLength]

	var sb strings.Builder
	sb.WriteString(prefix)
	for i := 0; i < len(digits); i++ {
		sb.WriteByte(maskDigits[digits[i]-'0'])
	}
	suffix := digits
	if len(suffix) > filenameSuffixLength {
		suffix = suffix[len(suffix)-filenameSuffixLength:]
	}
	for i := 0; i < len(suffix); i++ {
		sb.WriteByte(maskSuffix[suffix[i]-'0'])
	}
	return sb.String()
}

// DecodeTileFilename recovers the tile id from an on-disk filename.
func DecodeTileFilename(name string) (int, error) {
	if len(name) <= filenamePrefixLength+filenameSuffixLength {
		return 0, fmt.Errorf("%w: %q too short", ErrInvalidFilename, name)
	}

	core := name[filenamePrefixLength : len(name)-filenameSuffixLength]
	digits := make([]byte, len(core))
	for i := 0; i < len(core); i++ {
		idx := strings.IndexByte(maskDigits, core[i])
		if idx < 0 {
			return 0, fmt.Errorf("%w: %q has unexpected character %q", ErrInvalidFilename, name, core[i])
		}
		digits[i] = '0' + byte(idx)
	}

	id, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	if EncodeTileFilename(id) != name {
		return 0, fmt.Errorf("%w: %q fails verification", ErrInvalidFilename, name)
	}
	return id, nil
}
