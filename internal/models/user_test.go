package models

import "testing"

func TestUserCan(t *testing.T) {
	admin := User{Role: RoleAdmin}
	if !admin.Can("users") || !admin.Can("orders") {
		t.Error("admin must bypass the permission map")
	}

	viewer := User{Role: RoleViewer, Permissions: Permissions{Orders: true}}
	if !viewer.Can("orders") {
		t.Error("viewer with orders permission must access orders")
	}
	if viewer.Can("users") {
		t.Error("viewer without users permission must be denied")
	}
	if viewer.Can("something-else") {
		t.Error("unknown resources must be denied")
	}
}

func TestFullPermissions(t *testing.T) {
	p := FullPermissions()
	if !p.Services || !p.Projects || !p.Products || !p.Orders || !p.Contacts || !p.Users {
		t.Errorf("FullPermissions() = %+v, want every capability set", p)
	}
}
