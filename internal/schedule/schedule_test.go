package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Slot
		wantErr bool
	}{
		{name: "morning slot", input: "8AM", want: SlotStart},
		{name: "lunch slot", input: "12PM", want: SlotPause},
		{name: "resume slot", input: "1PM", want: SlotResume},
		{name: "end slot", input: "5PM", want: SlotEnd},
		{name: "case insensitive", input: "8am", want: SlotStart},
		{name: "unknown name", input: "9AM", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	tests := []struct {
		hour int
		want Slot
	}{
		{hour: 0, want: SlotStart},
		{hour: 7, want: SlotStart},
		{hour: 11, want: SlotStart},
		{hour: 12, want: SlotPause},
		{hour: 13, want: SlotResume},
		{hour: 16, want: SlotResume},
		{hour: 17, want: SlotEnd},
		{hour: 23, want: SlotEnd},
	}

	for _, tt := range tests {
		now := time.Date(2026, 2, 23, tt.hour, 30, 0, 0, loc)
		if got := Detect(now); got != tt.want {
			t.Errorf("Detect(hour=%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestDefaultScheduleOrderingInvariant(t *testing.T) {
	sched := Default()
	if err := sched.Validate(); err != nil {
		t.Fatalf("default schedule must validate: %v", err)
	}

	wantTimes := []TimeOfDay{
		{Hour: 8}, {Hour: 12}, {Hour: 13}, {Hour: 17},
	}
	for i, slot := range All() {
		got := sched.Definition(slot).FallbackTime
		if got != wantTimes[i] {
			t.Errorf("slot %v fallback = %v, want %v", slot, got, wantTimes[i])
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "08:00", want: TimeOfDay{Hour: 8}},
		{input: "17:30:15", want: TimeOfDay{Hour: 17, Minute: 30, Second: 15}},
		{input: "24:00", wantErr: true},
		{input: "08:60", wantErr: true},
		{input: "eight", wantErr: true},
		{input: "08", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoadFileAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yml")
	content := `
slots:
  8AM:
    time: "08:30"
    transition: "Start Support"
  5PM:
    from_status: "SUPPORT ACTIVE"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sched, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	start := sched.Definition(SlotStart)
	if start.FallbackTime != (TimeOfDay{Hour: 8, Minute: 30}) {
		t.Errorf("start fallback = %v, want 08:30:00", start.FallbackTime)
	}
	if start.TransitionName != "Start Support" {
		t.Errorf("start transition = %q", start.TransitionName)
	}
	if start.FromStatus != "SUPPORT OPEN" {
		t.Errorf("start from_status should keep default, got %q", start.FromStatus)
	}

	end := sched.Definition(SlotEnd)
	if end.FromStatus != "SUPPORT ACTIVE" {
		t.Errorf("end from_status = %q, want SUPPORT ACTIVE", end.FromStatus)
	}
	if end.FallbackTime != (TimeOfDay{Hour: 17}) {
		t.Errorf("end fallback should keep default, got %v", end.FallbackTime)
	}
}

func TestLoadFileRejectsBrokenOrdering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yml")
	content := `
slots:
  1PM:
    time: "11:00"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected ordering violation to be rejected")
	}
}

func TestLoadFileRejectsUnknownSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yml")
	content := `
slots:
  9AM:
    time: "09:00"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected unknown slot to be rejected")
	}
}
