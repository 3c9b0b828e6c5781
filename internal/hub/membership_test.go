package hub

import (
	"testing"

	"github.com/devaloi/safecast/internal/domain"
)

func TestMemoryMembershipAddRemove(t *testing.T) {
	t.Parallel()
	m := NewMemoryMembership()

	if !m.Add("room1", Member{ConnectionID: "b", Role: domain.RoleViewer}) {
		t.Fatal("expected add to succeed")
	}
	m.Add("room1", Member{ConnectionID: "a", Role: domain.RoleBroadcaster})
	if m.Add("room1", Member{ConnectionID: "a", Role: domain.RoleViewer}) {
		t.Error("expected duplicate add to report false")
	}

	members := m.Members("room1")
	if len(members) != 2 || members[0].ConnectionID != "a" || members[0].Role != domain.RoleBroadcaster {
		t.Errorf("unexpected members %+v", members)
	}

	if m.Remove("room1", "zzz") {
		t.Error("expected remove of absent member to report false")
	}
	m.Remove("room1", "a")
	m.Remove("room1", "b")
	if ids := m.RoomIDs(); len(ids) != 0 {
		t.Errorf("expected empty room to disappear, got %v", ids)
	}
	if m.Count("room1") != 0 {
		t.Error("expected zero count")
	}
	if m.Len() != 0 {
		t.Errorf("expected no live rooms, got %d", m.Len())
	}

	m.Add("room1", Member{ConnectionID: "a"})
	m.Add("room2", Member{ConnectionID: "a"})
	m.Add("room2", Member{ConnectionID: "b"})
	if m.Len() != 2 {
		t.Errorf("expected 2 live rooms, got %d", m.Len())
	}
}

func TestMemoryMembershipRoomIDsSorted(t *testing.T) {
	t.Parallel()
	m := NewMemoryMembership()
	m.Add("b", Member{ConnectionID: "1"})
	m.Add("a", Member{ConnectionID: "1"})

	ids := m.RoomIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected [a b], got %v", ids)
	}
}
