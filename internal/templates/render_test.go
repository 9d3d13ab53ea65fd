package templates

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		leadName string
		want     string
	}{
		{
			name:     "single placeholder",
			text:     "Hi {lead_name}, welcome!",
			leadName: "Jordan Avery",
			want:     "Hi Jordan Avery, welcome!",
		},
		{
			name:     "repeated placeholder",
			text:     "{lead_name}: your offer, {lead_name}.",
			leadName: "Sam",
			want:     "Sam: your offer, Sam.",
		},
		{
			name:     "no placeholder",
			text:     "Generic reminder.",
			leadName: "Sam",
			want:     "Generic reminder.",
		},
		{
			name:     "empty text",
			text:     "",
			leadName: "Sam",
			want:     "",
		},
		{
			name:     "unknown placeholders untouched",
			text:     "Hi {lead_name}, see {vehicle_model}.",
			leadName: "Sam",
			want:     "Hi Sam, see {vehicle_model}.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.text, tt.leadName); got != tt.want {
				t.Errorf("Render(%q, %q) = %q, want %q", tt.text, tt.leadName, got, tt.want)
			}
		})
	}
}
