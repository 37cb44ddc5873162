package device

import (
	"errors"
	"testing"
)

func TestExercise_Phone(t *testing.T) {
	results := Exercise(Phone{}, DefaultNumber)

	wantOps := []Operation{OpPowerOn, OpPowerOff, OpShowInfo, OpMakeCall, OpReceiveCall}
	if len(results) != len(wantOps) {
		t.Fatalf("Exercise(phone) returned %d results, want %d", len(results), len(wantOps))
	}
	for i, op := range wantOps {
		if results[i].Operation != op {
			t.Errorf("results[%d].Operation = %q, want %q", i, results[i].Operation, op)
		}
	}

	if results[3].Input != DefaultNumber {
		t.Errorf("make_call input = %q, want %q", results[3].Input, DefaultNumber)
	}
	if results[0].Input != "" {
		t.Errorf("power_on input = %q, want empty", results[0].Input)
	}

	want := "Teléfono inteligente encendido\n" +
		"Teléfono inteligente apagado\n" +
		"Mostrando información\n" +
		"Llamando al número: 123456789\n" +
		"Recibiendo llamada del número: 123456789"
	if got := Join(results); got != want {
		t.Errorf("Join(Exercise(phone)) = %q, want %q", got, want)
	}
}

func TestExercise_TabletSkipsCalls(t *testing.T) {
	results := Exercise(Tablet{}, DefaultNumber)

	if len(results) != 3 {
		t.Fatalf("Exercise(tablet) returned %d results, want 3", len(results))
	}

	want := "Tablet encendida\nTablet apagada\nMostrando informacion"
	if got := Join(results); got != want {
		t.Errorf("Join(Exercise(tablet)) = %q, want %q", got, want)
	}
}

func TestCall(t *testing.T) {
	t.Run("phone", func(t *testing.T) {
		results, err := Call(Phone{}, "555")
		if err != nil {
			t.Fatalf("Call() error = %v", err)
		}
		want := "Llamando al número: 555\nRecibiendo llamada del número: 555"
		if got := Join(results); got != want {
			t.Errorf("Join(Call(phone)) = %q, want %q", got, want)
		}
	})

	t.Run("tablet", func(t *testing.T) {
		results, err := Call(Tablet{}, "555")
		if !errors.Is(err, ErrCapabilityUnsupported) {
			t.Fatalf("Call(tablet) error = %v, want ErrCapabilityUnsupported", err)
		}
		if results != nil {
			t.Errorf("Call(tablet) results = %v, want nil", results)
		}
	})
}

func TestJoin_Empty(t *testing.T) {
	if got := Join(nil); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}

func TestExerciseFlat_ChiplessTabletPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("ExerciseFlat(ChiplessTablet) did not panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrCallUnsupported) {
			t.Errorf("panic value = %v, want ErrCallUnsupported", r)
		}
	}()

	ExerciseFlat(ChiplessTablet{}, DefaultNumber)
}

func TestChiplessTablet_SharesTabletOutputs(t *testing.T) {
	var flat FlatDevice = ChiplessTablet{}
	tab := Tablet{}

	if flat.PowerOn() != tab.PowerOn() || flat.PowerOff() != tab.PowerOff() || flat.ShowInfo() != tab.ShowInfo() {
		t.Error("ChiplessTablet power/info outputs differ from Tablet")
	}
}

func TestExerciseFlat_Phone(t *testing.T) {
	// A phone satisfies FlatDevice too; with real call support nothing panics.
	results := ExerciseFlat(Phone{}, DefaultNumber)
	if got, want := Join(results), Join(Exercise(Phone{}, DefaultNumber)); got != want {
		t.Errorf("ExerciseFlat(phone) = %q, want %q", got, want)
	}
}
