package fingerprint

import (
	"errors"
	"testing"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	seq := randomSequence(11, 25, cfg)

	data, err := Marshal(seq, cfg.CodewordWidth)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	wantLen := 10 + len(seq)*4 // header plus 4 bytes per 32-bit codeword
	if len(data) != wantLen {
		t.Fatalf("expected %d serialized bytes, got %d", wantLen, len(data))
	}

	got, width, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if width != cfg.CodewordWidth {
		t.Errorf("expected width %d, got %d", cfg.CodewordWidth, width)
	}
	if len(got) != len(seq) {
		t.Fatalf("expected %d codewords, got %d", len(seq), len(got))
	}
	for i := range seq {
		if got[i] != seq[i] {
			t.Fatalf("codeword %d corrupted: %#x vs %#x", i, uint64(got[i]), uint64(seq[i]))
		}
	}
}

func TestMarshalOddWidth(t *testing.T) {
	// A 20-bit width packs into 3 bytes per codeword.
	seq := Sequence{0xABCDE, 0x12345, 0xFFFFF}

	data, err := Marshal(seq, 20)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if len(data) != 10+3*3 {
		t.Fatalf("expected 19 bytes, got %d", len(data))
	}

	got, width, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if width != 20 {
		t.Errorf("expected width 20, got %d", width)
	}
	for i := range seq {
		if got[i] != seq[i] {
			t.Fatalf("codeword %d corrupted: %#x vs %#x", i, uint64(got[i]), uint64(seq[i]))
		}
	}
}

func TestMarshalEmptySequence(t *testing.T) {
	data, err := Marshal(nil, 32)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, _, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected an empty sequence, got %d codewords", len(got))
	}
}

func TestMarshalRejectsBadWidth(t *testing.T) {
	for _, width := range []int{0, -1, 65} {
		if _, err := Marshal(Sequence{1}, width); err == nil {
			t.Errorf("width %d should be rejected", width)
		}
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	cfg := DefaultConfig()
	good, err := Marshal(randomSequence(12, 4, cfg), cfg.CodewordWidth)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	t.Run("short header", func(t *testing.T) {
		if _, _, err := Unmarshal(good[:6]); !errors.Is(err, ErrTruncated) {
			t.Errorf("expected ErrTruncated, got %v", err)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte{}, good...)
		bad[0] = 'X'
		if _, _, err := Unmarshal(bad); !errors.Is(err, ErrBadMagic) {
			t.Errorf("expected ErrBadMagic, got %v", err)
		}
	})

	t.Run("bad version", func(t *testing.T) {
		bad := append([]byte{}, good...)
		bad[4] = 99
		if _, _, err := Unmarshal(bad); !errors.Is(err, ErrBadVersion) {
			t.Errorf("expected ErrBadVersion, got %v", err)
		}
	})

	t.Run("truncated body", func(t *testing.T) {
		if _, _, err := Unmarshal(good[:len(good)-1]); !errors.Is(err, ErrTruncated) {
			t.Errorf("expected ErrTruncated, got %v", err)
		}
	})
}
