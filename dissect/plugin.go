package dissect

// Info is the metadata a host analysis tool registers for this
// dissector. Mapping a Result onto the host's own field tree is the
// host's job; the core stops at producing Results.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FieldDef describes one field the host may want to register for
// display or filtering ahead of time.
type FieldDef struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	HasLabels bool   `json:"has_labels"`
}

func PluginInfo() Info {
	return Info{Name: "h4bcm-lmp", Version: "0.2.0"}
}
