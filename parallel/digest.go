package parallel

import "golang.org/x/crypto/sha3"

// Digest returns a 16-byte SHAKE-256 fingerprint of payload, the same
// truncated-hash convention the reference pack's Merkle tree uses for
// leaf commitments. Solver exchanges log it per round (ARAN_DEBUG=1) so
// a mismatch between what one rank sent and what others received is
// visible without capturing full payload bytes.
func Digest(payload []byte) [16]byte {
	var out [16]byte
	sha3.ShakeSum256(out[:], payload)
	return out
}
