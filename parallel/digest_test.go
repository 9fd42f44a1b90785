package parallel

import "testing"

func TestDigestIsDeterministic(t *testing.T) {
	a := Digest([]byte("node-data-payload"))
	b := Digest([]byte("node-data-payload"))
	if a != b {
		t.Fatalf("Digest not deterministic: %x vs %x", a, b)
	}
}

func TestDigestDistinguishesPayloads(t *testing.T) {
	a := Digest([]byte("rank0"))
	b := Digest([]byte("rank1"))
	if a == b {
		t.Fatalf("Digest collided for distinct payloads: %x", a)
	}
}
