package engine

import "testing"

func TestDirectionHelpers(t *testing.T) {
	tests := []struct {
		d          Direction
		opposite   Direction
		mirror     Direction
		horizontal bool
	}{
		{Up, Down, Up, false},
		{Down, Up, Down, false},
		{Left, Right, Right, true},
		{Right, Left, Left, true},
	}

	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			if got := tt.d.Opposite(); got != tt.opposite {
				t.Errorf("Opposite() = %v, want %v", got, tt.opposite)
			}
			if got := tt.d.Mirror(); got != tt.mirror {
				t.Errorf("Mirror() = %v, want %v", got, tt.mirror)
			}
			if got := tt.d.Horizontal(); got != tt.horizontal {
				t.Errorf("Horizontal() = %v, want %v", got, tt.horizontal)
			}
		})
	}
}

func TestPosTowards(t *testing.T) {
	origin := Pos{X: 2, Y: 2}
	tests := []struct {
		d    Direction
		want Pos
	}{
		{Up, Pos{X: 2, Y: 3}},
		{Down, Pos{X: 2, Y: 1}},
		{Left, Pos{X: 1, Y: 2}},
		{Right, Pos{X: 3, Y: 2}},
	}
	for _, tt := range tests {
		if got := origin.Towards(tt.d); got != tt.want {
			t.Errorf("Towards(%v) = %+v, want %+v", tt.d, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down", "left", "right", "u", "d", "l", "r", "U", "D", "L", "R"} {
		if _, err := ParseDirection(s); err != nil {
			t.Errorf("ParseDirection(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseDirection("north"); err == nil {
		t.Errorf("ParseDirection should reject unknown names")
	}
}

func TestParseActionType(t *testing.T) {
	tests := map[string]ActionType{
		"push":    ActionPush,
		"enter":   ActionEnter,
		"eat":     ActionEat,
		"possess": ActionPossess,
	}
	for s, want := range tests {
		got, err := ParseActionType(s)
		if err != nil || got != want {
			t.Errorf("ParseActionType(%q) = %v, %v; want %v", s, got, err, want)
		}
	}
	if _, err := ParseActionType("teleport"); err == nil {
		t.Errorf("ParseActionType should reject unknown tokens")
	}
}

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		name    string
		hsv     HSV
		r, g, b uint8
	}{
		{"black", HSV{0, 0, 0}, 0, 0, 0},
		{"white", HSV{0, 0, 1}, 255, 255, 255},
		{"red", HSV{0, 1, 1}, 255, 0, 0},
		{"green", HSV{120, 1, 1}, 0, 255, 0},
		{"blue", HSV{240, 1, 1}, 0, 0, 255},
		{"gray", HSV{0, 0, 0.5}, 127, 127, 127},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := tt.hsv.RGB()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("RGB() = %d,%d,%d; want %d,%d,%d", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestBlockInBounds(t *testing.T) {
	block := &Block{Width: 3, Height: 2}
	inside := []Pos{{0, 0}, {2, 1}, {1, 0}}
	outside := []Pos{{-1, 0}, {3, 0}, {0, 2}, {0, -1}}
	for _, p := range inside {
		if !block.InBounds(p) {
			t.Errorf("InBounds(%+v) = false, want true", p)
		}
	}
	for _, p := range outside {
		if block.InBounds(p) {
			t.Errorf("InBounds(%+v) = true, want false", p)
		}
	}
}
