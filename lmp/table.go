package lmp

// Base and extended opcode tables. Built once at init and never
// mutated afterwards, so concurrent lookups from multiple decode calls
// need no synchronization.

var encryptionModeNames = map[uint64]string{
	0: "no encryption",
	1: "encryption",
	2: "previously used",
}

var afhModeNames = map[uint64]string{
	0: "disabled",
	1: "enabled",
}

var afhReportingNames = map[uint64]string{
	0: "AFH reporting disabled",
	1: "AFH reporting enabled",
}

var pageSchemeNames = map[uint64]string{0: "mandatory"}

var pageSettingsNames = map[uint64]string{
	0: "R0",
	1: "R1",
	2: "R2",
}

var slotNames = map[uint64]string{
	0: "not available",
	1: "1-slot packets",
	2: "3-slot packets",
	3: "5-slot packets",
}

var rateTypeNames = map[uint64]string{
	0: "DM1 packets",
	1: "2MBs packets",
	2: "3MBs packets",
	3: "rfu",
}

var fecNames = map[uint64]string{
	0: "use FEC",
	1: "do not use FEC",
}

var featurePageNames = map[uint64]string{
	0: "standard features",
	1: "extended features 64-67",
	2: "extended features 128-140",
}

var packetTypeTableNames = map[uint64]string{
	0: "1 Mbps only",
	1: "2/3 Mbps",
}

var ioCapNames = map[uint64]string{
	0: "DisplayOnly",
	1: "DisplayYesNo",
	2: "KeyboardOnly",
	3: "NoInputNoOutput",
}

var oobNames = map[uint64]string{
	0: "not present",
	1: "P-192",
	2: "P-256",
	3: "P-192 and P-256",
}

var authReqNames = map[uint64]string{
	0: "MITM Protection Not Required - No Bonding",
	1: "MITM Protection Required - No Bonding",
	2: "MITM Protection Not Required - Dedicated Bonding",
	3: "MITM Protection Required - Dedicated Bonding",
	4: "MITM Protection Not Required - General Bonding",
	5: "MITM Protection Required - General Bonding",
}

var powerAdjReqNames = map[uint64]string{
	0: "decrement power one step",
	1: "increment power one step",
	2: "increase to maximum power",
}

var sniffTimingNames = []string{
	"change", "init", "accwin", "un3", "un4", "un5", "un6", "un7",
}

var versionLayout = Layout{
	u8e("version", versionNames),
	le16("company_id"),
	le16("subversion"),
}

var featuresLayout = Layout{flags64("features", featureNames)}

var maxSlotLayout = Layout{u8("max_slots")}

var pageModeLayout = Layout{
	u8e("scheme", pageSchemeNames),
	u8e("settings", pageSettingsNames),
}

var sniffSubratingLayout = Layout{
	u8("max_sniff_subrate"),
	le16("min_sniff_timeout"),
	le16("subrating_instant"),
}

var ioCapabilityLayout = Layout{
	u8e("io_cap", ioCapNames),
	u8e("oob", oobNames),
	u8e("auth", authReqNames),
}

var featuresExtLayout = Layout{
	u8e("fpage", featurePageNames),
	u8("max_page"),
	when(flags64("features0", featureNames), func(d Decoded) bool { return d["fpage"] == 0 }),
	when(flags64("features1", extFeatureNamesPage1), func(d Decoded) bool { return d["fpage"] == 1 }),
	when(flags64("features2", extFeatureNamesPage2), func(d Decoded) bool { return d["fpage"] == 2 }),
	when(flags64("features", extFeatureNamesPage2), func(d Decoded) bool { return d["fpage"] > 2 }),
}

var baseTable = map[uint8]Entry{
	1: {"LMP_name_req", Layout{u8("name_offset")}},
	2: {"LMP_name_res", Layout{
		u8("name_offset"),
		u8("name_len"),
		rawFrom("name_frag", "name_len"),
	}},
	3: {"LMP_accepted", Layout{
		bits("unused", 1),
		bitse("code", 7, opcodeNames),
	}},
	4: {"LMP_not_accepted", Layout{
		bits("unused", 1),
		bitse("code", 7, opcodeNames),
		u8e("error_code", errorCodeNames),
	}},
	5:  {"LMP_clkoffset_req", nil},
	6:  {"LMP_clkoffset_res", Layout{le16("offset")}},
	7:  {"LMP_detach", Layout{u8e("error_code", errorCodeNames)}},
	8:  {"LMP_in_rand", Layout{raw("rand", 16)}},
	9:  {"LMP_comb_key", Layout{raw("key", 16)}},
	10: {"LMP_unit_key", Layout{raw("key", 16)}},
	11: {"LMP_au_rand", Layout{raw("rand", 16)}},
	12: {"LMP_sres", Layout{raw("authres", 4)}},
	13: {"LMP_temp_rand", Layout{raw("rand", 16)}},
	14: {"LMP_temp_key", Layout{raw("key", 16)}},
	15: {"LMP_encryption_mode_req", Layout{u8e("mode", encryptionModeNames)}},
	16: {"LMP_encryption_key_size_req", Layout{u8("keysize")}},
	17: {"LMP_start_encryption_req", Layout{raw("rand", 16)}},
	18: {"LMP_stop_encryption_req", nil},
	23: {"LMP_sniff_req", Layout{
		flags8("timectr", sniffTimingNames),
		le16("dsniff"),
		le16("tsniff"),
		le16("sniff_attempt"),
		le16("sniff_timeout"),
	}},
	24: {"LMP_unsniff_req", nil},
	33: {"LMP_max_power", nil},
	34: {"LMP_min_power", nil},
	35: {"LMP_auto_rate", nil},
	36: {"LMP_preferred_rate", Layout{
		bits("rfu", 1),
		bitse("edrsize", 2, slotNames),
		bitse("type", 2, rateTypeNames),
		bitse("size", 2, slotNames),
		bitse("fec", 1, fecNames),
	}},
	37: {"LMP_version_req", versionLayout},
	38: {"LMP_version_res", versionLayout},
	39: {"LMP_features_req", featuresLayout},
	40: {"LMP_features_res", featuresLayout},
	45: {"LMP_max_slot", maxSlotLayout},
	46: {"LMP_max_slot_req", maxSlotLayout},
	47: {"LMP_timing_accuracy_req", nil},
	48: {"LMP_timing_accuracy_res", Layout{
		u8("drift"),
		u8("jitter"),
	}},
	49: {"LMP_setup_complete", nil},
	51: {"LMP_host_connection_req", nil},
	53: {"LMP_page_mode_req", pageModeLayout},
	54: {"LMP_page_scan_mode_req", pageModeLayout},
	55: {"LMP_supervision_timeout", Layout{le16("timeout")}},
	60: {"LMP_set_AFH", Layout{
		le32("instant"),
		u8e("mode", afhModeNames),
		raw("chM", 10),
	}},
	61: {"LMP_encapsulated_header", Layout{
		u8("major_type"),
		u8("minor_type"),
		u8("enc_len"),
	}},
	62: {"LMP_encapsulated_payload", Layout{raw("data", 16)}},
	63: {"LMP_Simple_Pairing_Confirm", Layout{raw("commit", 16)}},
	64: {"LMP_Simple_Pairing_Number", Layout{raw("nonce", 16)}},
	65: {"LMP_DHkey_Check", Layout{raw("confirm", 16)}},
}

var extTable = map[uint8]Entry{
	1: {"LMP_accepted_ext", Layout{
		bits("unused", 1),
		bitse("code1", 7, opcodeNames),
		u8e("code2", extOpcodeNames),
	}},
	2: {"LMP_not_accepted_ext", Layout{
		bits("unused", 1),
		bitse("code1", 7, opcodeNames),
		u8e("code2", extOpcodeNames),
		u8e("error_code", errorCodeNames),
	}},
	3:  {"LMP_features_req_ext", featuresExtLayout},
	4:  {"LMP_features_res_ext", featuresExtLayout},
	11: {"LMP_packet_type_table_req", Layout{u8e("pkt_type_table", packetTypeTableNames)}},
	16: {"LMP_channel_classification_req", Layout{
		u8e("mode", afhReportingNames),
		le16("min_interval"),
		le16("max_interval"),
	}},
	17: {"LMP_channel_classification", Layout{raw("class", 10)}},
	21: {"LMP_sniff_subrating_req", sniffSubratingLayout},
	22: {"LMP_sniff_subrating_res", sniffSubratingLayout},
	23: {"LMP_pause_encryption_req", nil},
	24: {"LMP_resume_encryption_req", nil},
	25: {"LMP_IO_Capability_req", ioCapabilityLayout},
	26: {"LMP_IO_Capability_res", ioCapabilityLayout},
	27: {"LMP_numeric_comparison_failed", nil},
	28: {"LMP_passkey_failed", nil},
	29: {"LMP_oob_failed", nil},
	31: {"LMP_power_control_req", Layout{u8e("poweradj", powerAdjReqNames)}},
	32: {"LMP_power_control_res", Layout{
		bits("unused", 2),
		bitse("p_8dpsk", 2, powerAdjustmentNames),
		bitse("p_dqpsk", 2, powerAdjustmentNames),
		bitse("p_gfsk", 2, powerAdjustmentNames),
	}},
	33: {"LMP_ping_req", nil},
	34: {"LMP_ping_res", nil},
}

// Lookup resolves a base opcode to its table entry.
func Lookup(opcode uint8) (Entry, bool) {
	e, ok := baseTable[opcode]
	return e, ok
}

// LookupExt resolves an extended opcode (the byte after the escape).
func LookupExt(opcode uint8) (Entry, bool) {
	e, ok := extTable[opcode]
	return e, ok
}
