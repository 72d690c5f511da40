package sequences

import (
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/santorosario/rosario/internal/models"
)

// Fingerprint returns a hex BLAKE2b-256 digest of the sequence content.
// Identifiers are excluded, so rebuilding from the same configuration and
// theme yields the same fingerprint.
func Fingerprint(seq *models.Sequence) string {
	hash, _ := blake2b.New256(nil)
	if seq == nil {
		return hex.EncodeToString(hash.Sum(nil))
	}

	write := func(value string) {
		hash.Write([]byte(value))
		hash.Write([]byte{0})
	}

	write(string(seq.Theme))
	for _, segment := range seq.Segments {
		write(strconv.Itoa(segment.Order))
		write(string(segment.Kind))
		write(segment.Title)
		write(segment.IntroAudio)
		write(segment.ReplyAudio)
		write(strconv.Itoa(segment.MysteryNumber))
		write(string(segment.MysteryGroup))
		write(strconv.FormatBool(segment.Enabled))
	}

	return hex.EncodeToString(hash.Sum(nil))
}
