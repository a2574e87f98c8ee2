package pagination

import (
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 9, 12, 0, 0, 123456000, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: created, ID: "20250309120000482910"})

	cursor, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if cursor == nil {
		t.Fatal("expected cursor")
	}
	if !cursor.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want %v", cursor.CreatedAt, created)
	}
	if cursor.ID != "20250309120000482910" {
		t.Fatalf("ID = %s", cursor.ID)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	cursor, err := ParseCursor("  ")
	if err != nil || cursor != nil {
		t.Fatalf("blank cursor should be nil,nil; got %v, %v", cursor, err)
	}
	if _, err := ParseCursor("not-base64!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor("bm90LWEtY3Vyc29y"); err == nil {
		t.Fatal("expected format error")
	}
}
