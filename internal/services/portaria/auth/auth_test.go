package auth

import (
	"context"
	"testing"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
)

func TestStaticRolesEmptyTableAllowsAll(t *testing.T) {
	t.Parallel()

	roles := NewStaticRoles("")
	if !roles.CanPerform(context.Background(), "anyone", ActionPublish, domain.Ordinance{}) {
		t.Fatal("empty role table should allow everything")
	}
}

func TestStaticRolesEnforceActionTable(t *testing.T) {
	t.Parallel()

	roles := NewStaticRoles("user-author:author, user-reviewer:reviewer, user-signer:signer|publisher, user-admin:admin")

	tests := []struct {
		name    string
		actorID string
		action  Action
		want    bool
	}{
		{"author submits", "user-author", ActionSubmit, true},
		{"author edits", "user-author", ActionEdit, true},
		{"author cannot claim", "user-author", ActionClaim, false},
		{"author cannot publish", "user-author", ActionPublish, false},
		{"reviewer claims", "user-reviewer", ActionClaim, true},
		{"reviewer approves", "user-reviewer", ActionApprove, true},
		{"reviewer rejects", "user-reviewer", ActionReject, true},
		{"reviewer cannot sign", "user-reviewer", ActionSign, false},
		{"signer signs", "user-signer", ActionSign, true},
		{"signer publishes", "user-signer", ActionPublish, true},
		{"signer cannot manage books", "user-signer", ActionManageBooks, false},
		{"admin manages books", "user-admin", ActionManageBooks, true},
		{"admin does anything", "user-admin", ActionReject, true},
		{"unknown actor denied", "user-stranger", ActionSubmit, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := roles.CanPerform(context.Background(), tc.actorID, tc.action, domain.Ordinance{})
			if got != tc.want {
				t.Fatalf("CanPerform(%s, %s) = %v, want %v", tc.actorID, tc.action, got, tc.want)
			}
		})
	}
}

func TestNewStaticRolesIgnoresMalformedEntries(t *testing.T) {
	t.Parallel()

	roles := NewStaticRoles("  , :reviewer, user-ok:author,,broken")
	if !roles.CanPerform(context.Background(), "user-ok", ActionSubmit, domain.Ordinance{}) {
		t.Fatal("well-formed entry should grant its role")
	}
	if roles.CanPerform(context.Background(), "broken", ActionSubmit, domain.Ordinance{}) {
		t.Fatal("entry without roles should not grant anything")
	}
}
