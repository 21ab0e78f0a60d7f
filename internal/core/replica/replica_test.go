package replica

import (
	"strings"
	"testing"
)

type nopDoc struct{ Doc }

func TestRegisterAndLookup(t *testing.T) {
	e := EngineFunc{
		EngineName: "test-nop",
		NewFunc:    func() (Doc, error) { return nopDoc{}, nil },
	}
	Register(e)

	got, err := Lookup("test-nop")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Name() != "test-nop" {
		t.Errorf("Name() = %q", got.Name())
	}
	if _, err := got.New(); err != nil {
		t.Errorf("New() error = %v", err)
	}

	found := false
	for _, n := range Engines() {
		if n == "test-nop" {
			found = true
		}
	}
	if !found {
		t.Errorf("Engines() = %v, missing test-nop", Engines())
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	e := EngineFunc{EngineName: "test-dup", NewFunc: func() (Doc, error) { return nil, nil }}
	Register(e)

	defer func() {
		if recover() == nil {
			t.Error("second Register() should panic")
		}
	}()
	Register(e)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("no-such-engine")
	if err == nil {
		t.Fatal("Lookup() should fail for an unknown engine")
	}
	if !strings.Contains(err.Error(), "no-such-engine") {
		t.Errorf("error %q should name the engine", err)
	}
}
