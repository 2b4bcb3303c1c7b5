package textscan

import (
	"reflect"
	"testing"
)

const ioregBlob = `+-o AppleSmartBattery  <class AppleSmartBattery, id 0x100000296, registered, matched, active, busy 0 (0 ms), retain 7>
    {
      "AppleRawMaxCapacity" = 4382
      "DesignCapacity" = 5103
      "MaxCapacity" = 100
      "ExternalConnected" = Yes
      "IsCharging" = No
      "CycleCount" = 212
      "Serial" = "F8Y2347019N1Q7FAK"
      "BatteryData" = {"DesignCapacity"=5103,"CycleCount"=212}
      "AvgTimeToFull" = 65535
    }`

func TestPlistField(t *testing.T) {
	var p Plist
	tests := []struct {
		key  string
		kind Kind
		want string
	}{
		{"DesignCapacity", Number, "5103"},
		{"MaxCapacity", Number, "100"},
		{"AppleRawMaxCapacity", Number, "4382"},
		{"CycleCount", Number, "212"},
		{"ExternalConnected", Bool, "Yes"},
		{"IsCharging", Bool, "No"},
		{"Serial", Text, "F8Y2347019N1Q7FAK"},
		{"AvgTimeToFull", Number, "65535"},
		{"NominalChargeCapacity", Number, Unknown},
		{"Serial", Number, Unknown},
		{"DesignCapacity", Text, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := p.Field(ioregBlob, tt.key, tt.kind); got != tt.want {
				t.Errorf("Field(%q, %v) = %q, want %q", tt.key, tt.kind, got, tt.want)
			}
		})
	}
}

func TestPlistBoolNormalizesUnknownWords(t *testing.T) {
	var p Plist
	if got := p.Field(`"FullyCharged" = True`, "FullyCharged", Bool); got != "No" {
		t.Errorf("Field = %q, want No for any non-Yes word", got)
	}
}

func TestPlistFieldEmptyBlob(t *testing.T) {
	var e Extractor = Plist{}
	if got := e.Field("", "Voltage", Number); got != Unknown {
		t.Errorf("Field on empty blob = %q, want %q", got, Unknown)
	}
}

const profilerBlob = `Power:

    Battery Information:

      Model Information:
          Serial Number: F8Y2347019N1Q7FAK
          Manufacturer: SMP
          Device Name: bq20z451
      Charge Information:
          State of Charge (%): 87
      Health Information:
          Cycle Count: 212
          Condition: Normal
`

func TestColonField(t *testing.T) {
	var c Colon
	tests := []struct {
		key  string
		kind Kind
		want string
	}{
		{"Manufacturer", Text, "SMP"},
		{"Serial Number", Text, "F8Y2347019N1Q7FAK"},
		{"State of Charge (%)", Number, "87"},
		{"Cycle Count", Number, "212"},
		{"Condition", Number, Unknown},
		{"Battery Information", Text, Unknown},
		{"Missing", Text, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := c.Field(profilerBlob, tt.key, tt.kind); got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestPairs(t *testing.T) {
	blob := "Device Identifier:        disk3s1s1\n   Solid State:              Yes\nHeader:\n\n"
	want := []Pair{
		{Key: "Device Identifier", Value: "disk3s1s1"},
		{Key: "Solid State", Value: "Yes"},
	}
	if got := Pairs(blob); !reflect.DeepEqual(got, want) {
		t.Errorf("Pairs = %#v, want %#v", got, want)
	}
}

func TestSections(t *testing.T) {
	blob := `Graphics/Displays:

    Intel UHD Graphics 630:

      Chipset Model: Intel UHD Graphics 630
      VRAM (Dynamic, Max): 1536 MB

    Radeon Pro 5300M:

      Chipset Model: AMD Radeon Pro 5300M
      VRAM (Total): 4 GB
`
	got := Sections(blob, "Chipset Model")
	if len(got) != 2 {
		t.Fatalf("Sections returned %d blocks, want 2", len(got))
	}
	var c Colon
	if v := c.Field(got[1], "Chipset Model", Text); v != "AMD Radeon Pro 5300M" {
		t.Errorf("second block model = %q", v)
	}
	if v := c.Field(got[0], "VRAM (Total)", Text); v != Unknown {
		t.Errorf("first block leaked second block's VRAM: %q", v)
	}
}
