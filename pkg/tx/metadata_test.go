package tx

import (
	"strings"
	"testing"
)

func TestChunkText_ShortPassesThrough(t *testing.T) {
	chunks := ChunkText("short value")
	if len(chunks) != 1 || chunks[0] != "short value" {
		t.Errorf("ChunkText = %v, want single untouched chunk", chunks)
	}
}

func TestChunkText_ExactBoundary(t *testing.T) {
	s := strings.Repeat("a", MaxMetadatumTextLen)
	chunks := ChunkText(s)
	if len(chunks) != 1 {
		t.Errorf("64-byte value should not be chunked, got %d chunks", len(chunks))
	}
}

func TestChunkText_SplitsAndReassembles(t *testing.T) {
	tests := []string{
		strings.Repeat("a", MaxMetadatumTextLen+1),
		strings.Repeat("b", 3*MaxMetadatumTextLen),
		strings.Repeat("word ", 40),
	}
	for _, s := range tests {
		chunks := ChunkText(s)
		if len(chunks) < 2 {
			t.Errorf("ChunkText(%d bytes) = %d chunks, want >= 2", len(s), len(chunks))
		}
		for i, c := range chunks {
			if len(c) > MaxMetadatumTextLen {
				t.Errorf("chunk %d is %d bytes, max %d", i, len(c), MaxMetadatumTextLen)
			}
		}
		if got := strings.Join(chunks, ""); got != s {
			t.Errorf("in-order concatenation does not reproduce the input")
		}
	}
}

func TestChunkText_NeverSplitsRunes(t *testing.T) {
	s := strings.Repeat("é", 60) // 2 bytes per rune, forces a split
	chunks := ChunkText(s)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !strings.HasPrefix(c, "é") || len(c)%2 != 0 {
			t.Errorf("chunk %d split inside a rune: %q", i, c)
		}
	}
	if strings.Join(chunks, "") != s {
		t.Error("reassembly mismatch")
	}
}

func TestTextMetadatum_Forms(t *testing.T) {
	if _, ok := TextMetadatum("short").(string); !ok {
		t.Error("short value should stay a string")
	}
	long := strings.Repeat("x", 100)
	list, ok := TextMetadatum(long).([]Metadatum)
	if !ok {
		t.Fatal("long value should become a list")
	}
	var sb strings.Builder
	for _, item := range list {
		sb.WriteString(item.(string))
	}
	if sb.String() != long {
		t.Error("list reassembly mismatch")
	}
}

func TestNFTMetadata_Nesting(t *testing.T) {
	policy := testPolicy(0xab)
	aux := NFTMetadata(policy, "Jane-1700000000000", map[string]string{
		"name":         "Jane-1700000000000",
		"documentHash": strings.Repeat("0", 64),
	})

	top, ok := aux[MetadataLabelNFT].(map[string]Metadatum)
	if !ok {
		t.Fatal("label 721 should map to a policy map")
	}
	byPolicy, ok := top[policy.String()].(map[string]Metadatum)
	if !ok {
		t.Fatalf("missing policy key %s", policy.String())
	}
	fields, ok := byPolicy["Jane-1700000000000"].(map[string]Metadatum)
	if !ok {
		t.Fatal("missing asset label key")
	}
	if fields["name"] != Metadatum("Jane-1700000000000") {
		t.Errorf("name field = %v", fields["name"])
	}
	// The 64-char document hash sits exactly at the ceiling and must not
	// be chunked.
	if _, ok := fields["documentHash"].(string); !ok {
		t.Error("64-byte document hash should stay a single string")
	}
}

func TestAuxiliaryData_HashStable(t *testing.T) {
	aux := NFTMetadata(testPolicy(0x01), "A-1", map[string]string{"name": "A-1"})

	h1, err := aux.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := aux.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 != h2 {
		t.Error("auxiliary data hash should be deterministic")
	}
	if h1.IsZero() {
		t.Error("hash should not be zero")
	}
}

func TestAuxiliaryData_HashDiffersByContent(t *testing.T) {
	a := NFTMetadata(testPolicy(0x01), "A-1", map[string]string{"name": "A-1"})
	b := NFTMetadata(testPolicy(0x01), "A-1", map[string]string{"name": "A-2"})

	ha, _ := a.Hash()
	hb, _ := b.Hash()
	if ha == hb {
		t.Error("different metadata should hash differently")
	}
}
