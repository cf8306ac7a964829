package db

import "testing"

func TestPatch_Build(t *testing.T) {
	var p Patch
	if !p.Empty() {
		t.Fatal("new patch should be empty")
	}
	p.Set("name", "Ana")
	p.Set("phone", "555")

	sql, args := p.Build("patients", 9, "clinic_a", "id, name", "updated_at = NOW()")

	want := "UPDATE patients SET name = $1, phone = $2, updated_at = NOW() WHERE id = $3 AND tenant_id = $4 RETURNING id, name"
	if sql != want {
		t.Errorf("got  %s\nwant %s", sql, want)
	}
	if len(args) != 4 || args[0] != "Ana" || args[1] != "555" || args[2] != int64(9) || args[3] != "clinic_a" {
		t.Errorf("unexpected args %v", args)
	}
	if n := len(p.Fields()); n != 2 {
		t.Errorf("expected 2 columns, got %d", n)
	}
}

func TestPatch_NoReturning(t *testing.T) {
	var p Patch
	p.Set("status", 0)
	sql, _ := p.Build("patients", 1, "t", "")
	want := "UPDATE patients SET status = $1 WHERE id = $2 AND tenant_id = $3"
	if sql != want {
		t.Errorf("got %s", sql)
	}
}

func TestPatch_And(t *testing.T) {
	var p Patch
	p.Set("name", "Ana")
	p.And("status = 1")
	sql, args := p.Build("patients", 4, "t", "id")
	want := "UPDATE patients SET name = $1 WHERE id = $2 AND tenant_id = $3 AND status = 1 RETURNING id"
	if sql != want {
		t.Errorf("got  %s\nwant %s", sql, want)
	}
	if len(args) != 3 {
		t.Errorf("expected 3 args, got %d", len(args))
	}
}

func TestPatch_Fields(t *testing.T) {
	p := &Patch{}
	p.Set("completed", true)
	p.Set("cost", 12.5)

	f := p.Fields()
	if len(f) != 2 || f["completed"] != true || f["cost"] != 12.5 {
		t.Errorf("unexpected fields %v", f)
	}
}
