package hostbridge

import "testing"

func TestValueType_String(t *testing.T) {
	tests := []struct {
		typ  ValueType
		want string
	}{
		{TypeUndefined, "Undefined"},
		{TypeBoolean, "Boolean"},
		{TypeFunction, "Function"},
		{TypeBigInt, "BigInt"},
		{ValueType(-1), "Unknown"},
		{ValueType(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("ValueType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestMaxCode(t *testing.T) {
	if MaxCode != 23 {
		t.Errorf("MaxCode = %d, want 23", MaxCode)
	}
}
