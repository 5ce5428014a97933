package orders

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

var numberPattern = regexp.MustCompile(`^ORD-\d+-[A-Z0-9]{9}$`)

func TestGenerateNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	got := GenerateNumber(now)
	if !numberPattern.MatchString(got) {
		t.Fatalf("GenerateNumber() = %q, want ORD-<ms>-<9 uppercase alphanumerics>", got)
	}

	parts := strings.Split(got, "-")
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		t.Fatalf("timestamp segment %q not numeric: %v", parts[1], err)
	}
	if ms != now.UnixMilli() {
		t.Errorf("timestamp segment = %d, want %d", ms, now.UnixMilli())
	}
}

func TestGenerateNumberDistinct(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		n := GenerateNumber(now)
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate order number after %d generations: %s", i, n)
		}
		seen[n] = struct{}{}
	}
}
