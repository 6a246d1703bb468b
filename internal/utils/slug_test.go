package utils

import "testing"

func TestSlugifyRoomName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"study hall", "study_hall"},
		{"  Study   Hall  ", "study_hall"},
		{"Maths-101", "maths-101"},
		{"röom näme!", "rom_nme"},
		{"already_ok", "already_ok"},
	}

	for _, tt := range tests {
		if got := SlugifyRoomName(tt.in); got != tt.want {
			t.Errorf("SlugifyRoomName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
