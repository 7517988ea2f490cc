package lmp

import (
	"sort"

	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/dissect"
)

// FieldDefs lists every field name the decoder can emit, for hosts
// that register display/filter fields up front. Stable order.
func FieldDefs() []dissect.FieldDef {
	seen := map[string]dissect.FieldDef{
		"opcode":     {Name: "opcode", Kind: dissect.KindEnum, HasLabels: true},
		"tid":        {Name: "tid", Kind: dissect.KindUint},
		"ext_opcode": {Name: "ext_opcode", Kind: dissect.KindEnum, HasLabels: true},
		"data":       {Name: "data", Kind: dissect.KindBytes},
	}
	collect := func(l Layout) {
		for _, d := range l {
			if _, ok := seen[d.Name]; ok {
				continue
			}
			seen[d.Name] = dissect.FieldDef{
				Name:      d.Name,
				Kind:      d.Kind,
				HasLabels: d.Labels != nil || d.FlagNames != nil,
			}
		}
	}
	for _, e := range baseTable {
		collect(e.Layout)
	}
	for _, e := range extTable {
		collect(e.Layout)
	}

	defs := make([]dissect.FieldDef, 0, len(seen))
	for _, d := range seen {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
