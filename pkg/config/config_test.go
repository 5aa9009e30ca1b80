package config

import (
	"testing"
)

func TestLoadString(t *testing.T) {
	data := `
# annealing profile for PC parts
[anneal]
heatingElement: bed
annealBedTemp: 110
annealMinutes: 240
endCoolingTemp: 50
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !cfg.HasSection("anneal") {
		t.Error("expected [anneal] section to exist")
	}
	if cfg.HasSection("nonexistent") {
		t.Error("expected [nonexistent] section to not exist")
	}

	sec, err := cfg.GetSection("anneal")
	if err != nil {
		t.Fatalf("GetSection(anneal) failed: %v", err)
	}
	if sec.GetName() != "anneal" {
		t.Errorf("expected name 'anneal', got '%s'", sec.GetName())
	}

	elem, err := sec.Get("heatingElement")
	if err != nil {
		t.Fatalf("Get(heatingElement) failed: %v", err)
	}
	if elem != "bed" {
		t.Errorf("expected 'bed', got '%s'", elem)
	}

	minutes, err := sec.GetInt("annealMinutes")
	if err != nil {
		t.Fatalf("GetInt(annealMinutes) failed: %v", err)
	}
	if minutes != 240 {
		t.Errorf("expected 240, got %d", minutes)
	}

	bedTemp, err := sec.GetFloat("annealBedTemp")
	if err != nil {
		t.Fatalf("GetFloat(annealBedTemp) failed: %v", err)
	}
	if bedTemp != 110.0 {
		t.Errorf("expected 110.0, got %f", bedTemp)
	}
}

func TestSectionGet(t *testing.T) {
	data := `
[test]
string_val: hello
int_val = 42
float_val: 3.14
bool_true: true
bool_false: no
bool_one: 1
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("test")

	// Get with fallback
	val, _ := sec.Get("missing", "default")
	if val != "default" {
		t.Errorf("expected 'default', got '%s'", val)
	}

	i, _ := sec.GetInt("int_val")
	if i != 42 {
		t.Errorf("expected 42, got %d", i)
	}

	i, _ = sec.GetInt("missing", 99)
	if i != 99 {
		t.Errorf("expected 99, got %d", i)
	}

	f, _ := sec.GetFloat("float_val")
	if f != 3.14 {
		t.Errorf("expected 3.14, got %f", f)
	}

	b, _ := sec.GetBool("bool_true")
	if !b {
		t.Error("expected true")
	}

	b, _ = sec.GetBool("bool_false")
	if b {
		t.Error("expected false")
	}

	b, _ = sec.GetBool("bool_one")
	if !b {
		t.Error("expected true for '1'")
	}
}

func TestCaseInsensitiveOptions(t *testing.T) {
	data := `
[anneal]
annealBedTemp: 60
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("anneal")
	v, err := sec.GetFloat("ANNEALBEDTEMP")
	if err != nil {
		t.Fatalf("GetFloat failed: %v", err)
	}
	if v != 60.0 {
		t.Errorf("expected 60.0, got %f", v)
	}
}

func TestUnusedTracking(t *testing.T) {
	data := `
[anneal]
annealBedTemp: 60
annaelMinutes: 120

[unknown_script]
key: value
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("anneal")
	sec.GetFloat("annealBedTemp")

	unused := sec.GetUnusedOptions()
	if len(unused) != 1 || unused[0] != "annaelminutes" {
		t.Errorf("expected the misspelled option to be unused, got %v", unused)
	}
	if err := cfg.CheckUnusedOptions(); err == nil {
		t.Error("expected error for unused option")
	}

	sections := cfg.GetUnusedSections()
	if len(sections) != 1 || sections[0] != "unknown_script" {
		t.Errorf("expected [unknown_script] to be unused, got %v", sections)
	}
}

func TestGetChoice(t *testing.T) {
	data := `
[anneal]
heatingElement: chamber
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("anneal")

	// Valid choice
	elem, err := sec.GetChoice("heatingElement", []string{"bed", "chamber", "all"})
	if err != nil {
		t.Fatalf("GetChoice failed: %v", err)
	}
	if elem != "chamber" {
		t.Errorf("expected 'chamber', got '%s'", elem)
	}

	// Invalid choice
	_, err = sec.GetChoice("heatingElement", []string{"bed", "all"})
	if err == nil {
		t.Error("expected error for invalid choice")
	}

	// Fallback choice
	elem, err = sec.GetChoice("missing", []string{"bed", "chamber", "all"}, "bed")
	if err != nil {
		t.Fatalf("GetChoice with fallback failed: %v", err)
	}
	if elem != "bed" {
		t.Errorf("expected 'bed', got '%s'", elem)
	}
}

func TestBoundsChecking(t *testing.T) {
	data := `
[anneal]
annealBedTemp: -5
annealMinutes: 120
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("anneal")

	zero := 0.0
	_, err = sec.GetFloatWithBounds("annealBedTemp", &zero, nil)
	if err == nil {
		t.Error("expected error for negative temperature")
	}

	minMinutes := 0
	v, err := sec.GetIntWithBounds("annealMinutes", &minMinutes, nil)
	if err != nil {
		t.Fatalf("GetIntWithBounds failed: %v", err)
	}
	if v != 120 {
		t.Errorf("expected 120, got %d", v)
	}
}

func TestMissingOptionError(t *testing.T) {
	data := `
[anneal]
exists: value
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("anneal")

	_, err = sec.Get("missing")
	if err == nil {
		t.Error("expected error for missing option")
	}

	configErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if configErr.Section != "anneal" {
		t.Errorf("expected section 'anneal', got '%s'", configErr.Section)
	}
	if configErr.Option != "missing" {
		t.Errorf("expected option 'missing', got '%s'", configErr.Option)
	}
}

func TestDuplicateSectionsMerge(t *testing.T) {
	data := `
[anneal]
annealBedTemp: 60

[anneal]
annealMinutes: 90
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("anneal")

	// Options merged from the duplicate header count as unused until
	// read, same as options from the first header.
	unused := sec.GetUnusedOptions()
	if len(unused) != 2 {
		t.Errorf("expected 2 unused options after merge, got %v", unused)
	}

	v, _ := sec.GetFloat("annealBedTemp")
	if v != 60.0 {
		t.Errorf("expected 60.0, got %f", v)
	}
	m, _ := sec.GetInt("annealMinutes")
	if m != 90 {
		t.Errorf("expected 90, got %d", m)
	}

	if unused := sec.GetUnusedOptions(); len(unused) != 0 {
		t.Errorf("expected no unused options after reading both, got %v", unused)
	}

	if names := cfg.GetSectionNames(); len(names) != 1 {
		t.Errorf("expected 1 section after merge, got %v", names)
	}
}
