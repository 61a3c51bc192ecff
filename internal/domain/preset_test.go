package domain

import "testing"

func TestPresetByName(t *testing.T) {
	p := PresetByName("Optimistic Growth")
	if p == nil {
		t.Fatal("expected preset for Optimistic Growth")
	}
	if p.Label != "growth" {
		t.Errorf("expected label growth, got %s", p.Label)
	}
	if p.Variables.RevenueGrowth != 0.20 {
		t.Errorf("expected revenue growth 0.20, got %f", p.Variables.RevenueGrowth)
	}

	if got := PresetByName("No Such Preset"); got != nil {
		t.Errorf("expected nil for unknown name, got %+v", got)
	}
}

func TestPresetCatalogKeysUnique(t *testing.T) {
	names := make(map[string]bool)
	labels := make(map[string]bool)
	for _, p := range Presets {
		if names[p.Name] {
			t.Errorf("duplicate preset name %s", p.Name)
		}
		if labels[p.Label] {
			t.Errorf("duplicate preset label %s", p.Label)
		}
		names[p.Name] = true
		labels[p.Label] = true
	}
}
