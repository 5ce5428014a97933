package models

import "testing"

func TestIsValidOrderStatus(t *testing.T) {
	for _, status := range OrderStatuses {
		if !IsValidOrderStatus(status) {
			t.Errorf("IsValidOrderStatus(%q) = false, want true", status)
		}
	}

	for _, status := range []string{"", "unknown", "Pending", "SHIPPED"} {
		if IsValidOrderStatus(status) {
			t.Errorf("IsValidOrderStatus(%q) = true, want false", status)
		}
	}
}
