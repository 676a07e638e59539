package social

import (
	"testing"

	"github.com/yungbote/dwitter-backend/internal/domain/account"
)

func TestProfileDisplayNameFollowsOwner(t *testing.T) {
	owner := &account.Account{Username: "user1"}
	p := &Profile{Account: owner}
	if p.String() != "user1" {
		t.Fatalf("String: got %q", p.String())
	}
	owner.Username = "new_username"
	if p.DisplayName() != "new_username" {
		t.Fatalf("DisplayName: expected rename to be visible, got %q", p.DisplayName())
	}

	var nilProfile *Profile
	if nilProfile.DisplayName() != "" {
		t.Fatalf("nil profile should have empty display name")
	}
	if (&Profile{}).String() != "" {
		t.Fatalf("profile without owner should have empty display name")
	}
}
