package ragchat

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{
			name:  "user",
			input: "user",
			want:  RoleUser,
		},
		{
			name:  "assistant",
			input: "assistant",
			want:  RoleAssistant,
		},
		{
			name:  "mixed case with whitespace",
			input: " Assistant ",
			want:  RoleAssistant,
		},
		{
			name:    "bot is not a role",
			input:   "bot",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseRole() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "full uuid",
			input: "550e8400-e29b-41d4-a716-446655440000",
			want:  "550e8400",
		},
		{
			name:  "exactly eight characters",
			input: "abcdefgh",
			want:  "abcdefgh",
		},
		{
			name:  "shorter than eight",
			input: "abc",
			want:  "abc",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortID(tt.input); got != tt.want {
				t.Errorf("ShortID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageIsAssistant(t *testing.T) {
	if !(Message{Role: RoleAssistant}).IsAssistant() {
		t.Error("assistant message should report IsAssistant")
	}
	if (Message{Role: RoleUser}).IsAssistant() {
		t.Error("user message should not report IsAssistant")
	}
}
