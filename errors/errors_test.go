package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseConvert,
				Kind:       KindTypeMismatch,
				Path:       []string{"user", "address", "zip"},
				GoType:     "float64",
				ScriptType: "string",
				Detail:     "cannot convert",
			},
			contains: []string{"[convert]", "type_mismatch", "user.address.zip", "float64", "string", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindScript,
				Detail: "callback failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[host]", "script", "callback failed", "caused by", "underlying error"},
		},
		{
			name:     "script type only",
			err:      TypeMismatch(PhaseDecode, nil, "", "function"),
			contains: []string{"script type function"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through the chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidUTF8,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindInvalidUTF8}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidUTF8}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	var target *Error
	if !errors.As(Wrap(PhaseEval, KindScript, err, "outer"), &target) {
		t.Fatal("errors.As should find *Error")
	}
	if target.Kind != KindScript {
		t.Errorf("As returned %v, want outermost error", target.Kind)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseConvert, KindTypeMismatch).
		Path("user", "name").
		GoType("string").
		ScriptType("number").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "number").
		Build()

	if err.Phase != PhaseConvert {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseConvert)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.GoType != "string" || err.ScriptType != "number" {
		t.Errorf("GoType=%v ScriptType=%v", err.GoType, err.ScriptType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got number" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidUTF8 caps preview", func(t *testing.T) {
		data := make([]byte, 64)
		for i := range data {
			data[i] = 0xff
		}
		err := InvalidUTF8(PhaseDecode, []string{"str"}, data)
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if strings.Count(err.Detail, "ff") != 32 {
			t.Errorf("Detail = %q, want 32 byte preview", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, []string{"list"}, 10, 5)
		if err.Kind != KindOutOfBounds || err.Value != 10 {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseConvert, []string{"val"}, 300, "uint8")
		if err.Kind != KindOverflow || err.GoType != "uint8" {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseHost, "function", "square")
		if !strings.Contains(err.Error(), `function "square" not found`) {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("Registration", func(t *testing.T) {
		cause := InvalidInput(PhaseRegister, "empty name")
		err := Registration("object", "Counter", cause)
		if err.Phase != PhaseRegister || err.Kind != KindRegistration {
			t.Errorf("got %+v", err)
		}
		if !errors.Is(err, &Error{Phase: PhaseRegister, Kind: KindInvalidInput}) {
			t.Error("cause should be reachable via errors.Is")
		}
	})

	t.Run("Closed", func(t *testing.T) {
		if Closed(PhaseEval).Kind != KindClosed {
			t.Error("Closed should use KindClosed")
		}
	})
}
