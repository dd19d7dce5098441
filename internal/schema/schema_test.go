package schema

import "testing"

func TestCompile(t *testing.T) {
	if _, err := Compile(); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
}

func TestValidators_Conf(t *testing.T) {
	set, err := Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	v := set.Validators()

	p, errs := v.Conf([]byte(`{"ai":["a1","a2"],"bi":["b1"]}`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(p.ActuatorsIDs) != 2 || len(p.ButtonsIDs) != 1 {
		t.Fatalf("got %+v, want 2 actuators and 1 button", p)
	}

	_, errs = v.Conf([]byte(`{"bi":["b1"]}`))
	if len(errs) == 0 {
		t.Fatal("expected a validation error for a missing ActuatorsIDs field")
	}
}

func TestValidators_State(t *testing.T) {
	set, err := Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	v := set.Validators()

	p, errs := v.State([]byte(`{"as":[true,false]}`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(p.ActuatorStates) != 2 {
		t.Fatalf("got %d actuator states, want 2", len(p.ActuatorStates))
	}

	_, errs = v.State([]byte(`{"as":["not-a-bool"]}`))
	if len(errs) == 0 {
		t.Fatal("expected a validation error for a non-boolean state entry")
	}
}

func TestValidators_Misc(t *testing.T) {
	set, err := Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	v := set.Validators()

	m, errs := v.Misc([]byte(`{"p":"d_b"}`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if m.Protocol != "d_b" || m.Click != nil {
		t.Fatalf("got %+v, want boot protocol with no click", m)
	}

	m, errs = v.Misc([]byte(`{"p":"c_nc","bi":"b1","ct":"lc","c":true}`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if m.Click == nil || m.Click.ButtonID != "b1" || !m.Click.Confirm {
		t.Fatalf("got %+v, want a populated click", m)
	}

	_, errs = v.Misc([]byte(`{"p":"c_nc","bi":"b1"}`))
	if len(errs) == 0 {
		t.Fatal("expected a validation error for a click message missing ct/c")
	}

	_, errs = v.Misc([]byte(`{"p":"unknown-tag"}`))
	if len(errs) == 0 {
		t.Fatal("expected a validation error for an unrecognised protocol tag")
	}
}
