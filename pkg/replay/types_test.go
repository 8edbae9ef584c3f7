package replay

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRootFolder(t *testing.T) {
	tests := []struct {
		segment string
		want    RootFolder
		wantErr bool
	}{
		{"data", RootFolderData, false},
		{"config", RootFolderConfig, false},
		{"patch", RootFolderPatch, false},
		{"blobs", "", true},
		{"Data", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			got, err := ParseRootFolder(tt.segment)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownRootFolder) {
					t.Errorf("ParseRootFolder(%q) error = %v, want ErrUnknownRootFolder", tt.segment, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRootFolder(%q) error = %v", tt.segment, err)
			}
			if got != tt.want {
				t.Errorf("ParseRootFolder(%q) = %q, want %q", tt.segment, got, tt.want)
			}
		})
	}
}

func TestNewContentKey(t *testing.T) {
	k1 := NewContentKey("b520b25e5d4b5627025aeba235d60708")
	k2 := NewContentKey("b520b25e5d4b5627025aeba235d60708")
	k3 := NewContentKey("something else")

	if k1 != k2 {
		t.Error("digest is not deterministic")
	}
	if k1 == k3 {
		t.Error("distinct segments produced the same key")
	}
	if len(k1.String()) != ContentKeySize*2 {
		t.Errorf("String() length = %d, want %d", len(k1.String()), ContentKeySize*2)
	}
}

func TestContentKey_TextRoundTrip(t *testing.T) {
	k := NewContentKey("b520b25e5d4b5627025aeba235d60708")

	text, err := k.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}

	var decoded ContentKey
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if decoded != k {
		t.Errorf("round trip mismatch: got %s, want %s", decoded, k)
	}
}

func TestContentKey_UnmarshalRejectsBadInput(t *testing.T) {
	var k ContentKey
	for _, bad := range []string{"", "zz", "abcd", "b520b25e5d4b5627025aeba235d6070800"} {
		if err := k.UnmarshalText([]byte(bad)); !errors.Is(err, ErrBadContentKey) {
			t.Errorf("UnmarshalText(%q) error = %v, want ErrBadContentKey", bad, err)
		}
	}
}

func TestRequest_Validate(t *testing.T) {
	key := NewContentKey("b520b25e5d4b5627025aeba235d60708")
	lower, upper := uint64(0), uint64(4095)

	valid := []Request{
		NewWholeFileRequest("tpr/sc1live", RootFolderData, key, false),
		NewRangeRequest("tpr/sc1live", RootFolderConfig, key, true, lower, upper),
	}
	for i, r := range valid {
		if err := r.Validate(); err != nil {
			t.Errorf("valid request %d: Validate() error = %v", i, err)
		}
	}

	invalid := []Request{
		// Neither range nor whole-file.
		{ProductRootURI: "tpr/sc1live", RootFolder: RootFolderData, ContentKey: key},
		// Both range and whole-file.
		{ProductRootURI: "tpr/sc1live", RootFolder: RootFolderData, ContentKey: key,
			ByteLower: &lower, ByteUpper: &upper, WholeFile: true},
		// One bound missing.
		{ProductRootURI: "tpr/sc1live", RootFolder: RootFolderData, ContentKey: key, ByteLower: &lower},
		// Root folder outside the vocabulary.
		{ProductRootURI: "tpr/sc1live", RootFolder: "blobs", ContentKey: key, WholeFile: true},
	}
	for i, r := range invalid {
		if err := r.Validate(); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("invalid request %d: Validate() error = %v, want ErrInvalidRequest", i, err)
		}
	}
}

func TestRequest_CoveredBytes(t *testing.T) {
	key := NewContentKey("b520b25e5d4b5627025aeba235d60708")

	r := NewRangeRequest("tpr/sc1live", RootFolderData, key, false, 0, 4095)
	n, ok := r.CoveredBytes()
	if !ok || n != 4096 {
		t.Errorf("CoveredBytes() = %d, %v, want 4096, true", n, ok)
	}

	whole := NewWholeFileRequest("tpr/sc1live", RootFolderData, key, false)
	if _, ok := whole.CoveredBytes(); ok {
		t.Error("CoveredBytes() known for whole-file request")
	}
}

func TestRequest_JSONRoundTrip(t *testing.T) {
	r := NewRangeRequest("tpr/sc1live", RootFolderData,
		NewContentKey("b520b25e5d4b5627025aeba235d60708"), true, 100, 200)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Request
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ContentKey != r.ContentKey {
		t.Errorf("ContentKey mismatch: got %s want %s", decoded.ContentKey, r.ContentKey)
	}
	if decoded.RootFolder != RootFolderData || !decoded.Index {
		t.Error("fields lost in round trip")
	}
	if decoded.ByteLower == nil || *decoded.ByteLower != 100 || decoded.ByteUpper == nil || *decoded.ByteUpper != 200 {
		t.Error("byte range lost in round trip")
	}
}
