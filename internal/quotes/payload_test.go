package quotes

import (
	"testing"

	"github.com/avigne/quotevault/internal/models"
)

func TestDecodeItems(t *testing.T) {
	cases := []struct {
		name string
		data string
		want int
	}{
		{"bare array", `[["a","b","c"],["d"]]`, 2},
		{"object with items", `{"items":[["a"]],"total":1,"end":true}`, 1},
		{"object without items", `{"total":0}`, 0},
		{"empty array", `[]`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := DecodeItems([]byte(tc.data))
			if err != nil {
				t.Fatalf("DecodeItems: %v", err)
			}
			if len(items) != tc.want {
				t.Errorf("len = %d, want %d", len(items), tc.want)
			}
		})
	}
}

func TestDecodeItemsRejectsScalars(t *testing.T) {
	for _, data := range []string{`5`, `"text"`, `true`, ``} {
		if _, err := DecodeItems([]byte(data)); err == nil {
			t.Errorf("expected error for payload %q", data)
		}
	}
}

func TestEncodeIsCompact(t *testing.T) {
	data, err := encodeItems([]models.Quote{{"a", "b"}, {"c"}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[["a","b"],["c"]]` {
		t.Errorf("encoded = %s", data)
	}

	hdr, err := encodeHeader(42, 100)
	if err != nil {
		t.Fatal(err)
	}
	if string(hdr) != `{"total":42,"chunk_size":100}` {
		t.Errorf("header = %s", hdr)
	}
}

func TestEncodeNilItems(t *testing.T) {
	data, err := encodeItems(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[]` {
		t.Errorf("encoded nil items = %s, want []", data)
	}
}
