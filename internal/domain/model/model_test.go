package model

import "testing"

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"new", OrderStatusNew, "new"},
		{"assigned", OrderStatusAssigned, "assigned"},
		{"in production", OrderStatusInProduction, "in_production"},
		{"ready", OrderStatusReady, "ready"},
		{"fulfilled", OrderStatusFulfilled, "fulfilled"},
		{"cancelled", OrderStatusCancelled, "cancelled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			if !tc.got.Valid() {
				t.Fatalf("expected %s to be valid", tc.got)
			}
		})
	}

	if OrderStatus("shipped").Valid() {
		t.Fatal("unexpected valid status")
	}
}

func TestDisplayNumber(t *testing.T) {
	cases := []struct {
		order Order
		want  string
	}{
		{Order{SourceOrderName: "#1001", OrderNumber: "x", SourceOrderNumber: "1001"}, "#1001"},
		{Order{OrderNumber: "170000001"}, "170000001"},
		{Order{SourceOrderNumber: "1002"}, "1002"},
	}
	for _, tc := range cases {
		if got := tc.order.DisplayNumber(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestActorRoles(t *testing.T) {
	admin := ActorFromUser(&User{ID: 1, Role: RoleAdmin, Email: "a@x"})
	if !admin.IsAdmin() || admin.IsPartner() {
		t.Fatalf("unexpected admin flags: %+v", admin)
	}
	partner := ActorFromUser(&User{ID: 2, Role: RolePartner})
	if partner.IsAdmin() || !partner.IsPartner() {
		t.Fatalf("unexpected partner flags: %+v", partner)
	}
	if SystemActor.Role != RoleSystem {
		t.Fatalf("unexpected system role %s", SystemActor.Role)
	}
	if RoleSystem != "shopify" {
		t.Fatalf("ingestion role must be stored as the platform name, got %q", RoleSystem)
	}
}
