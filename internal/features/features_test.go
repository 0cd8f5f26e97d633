package features

import "testing"

func TestFromVersion(t *testing.T) {
	tests := []struct {
		version   int64
		budget    bool
		assistant bool
	}{
		{0, false, false},
		{1, false, false},
		{2, true, false},
		{3, true, true},
		{10, true, true},
	}

	for _, tt := range tests {
		f := FromVersion(tt.version)
		if f.Budget != tt.budget {
			t.Errorf("version %d: Budget = %v, want %v", tt.version, f.Budget, tt.budget)
		}
		if f.Assistant != tt.assistant {
			t.Errorf("version %d: Assistant = %v, want %v", tt.version, f.Assistant, tt.assistant)
		}
	}
}
