package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", 1) || !m.Enabled("c", 1) || !m.Enabled("e", 1) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", 1) || m.Enabled("d", 1) || m.Enabled("f", 1) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per member")
		}
	}

	if m.Enabled("canary", 0) {
		t.Fatal("percentage rollout requires non-zero memberID")
	}
}

func TestEnabled_UnknownFlag(t *testing.T) {
	m := NewManager("smtp_mail=on")

	if m.Enabled("post_image_upload", 1) {
		t.Fatal("unconfigured flag must evaluate false via Enabled")
	}
}

func TestEnabledOrMissing(t *testing.T) {
	m := NewManager("post_image_upload=off")

	if m.EnabledOrMissing(FlagPostImageUpload, 1) {
		t.Fatal("explicitly disabled flag must evaluate false")
	}
	if !m.EnabledOrMissing(FlagSMTPMail, 1) {
		t.Fatal("unconfigured flag must default to enabled")
	}

	var nilManager *Manager
	if !nilManager.EnabledOrMissing(FlagSMTPMail, 1) {
		t.Fatal("nil manager must default to enabled")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	snap := m.Snapshot(123)
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap["x"] {
		t.Fatal("expected x to be enabled in snapshot")
	}
	if snap["z"] {
		t.Fatal("expected z to be disabled in snapshot")
	}
}
