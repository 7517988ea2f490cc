// Package lmp decodes Bluetooth BR/EDR Link Manager Protocol control
// PDUs. The first payload byte carries a 7-bit opcode and a 1-bit
// transaction ID; opcode 127 escapes to an extended opcode in the next
// byte. Decoding is table-driven: per-opcode field layouts are data,
// the extraction loop is uniform.
package lmp

// EscapeOpcode is the base opcode signalling an extended opcode byte.
const EscapeOpcode = 127

var opcodeNames = map[uint64]string{
	0:   "LMP_Broadcom_BPCS",
	1:   "LMP_name_req",
	2:   "LMP_name_res",
	3:   "LMP_accepted",
	4:   "LMP_not_accepted",
	5:   "LMP_clkoffset_req",
	6:   "LMP_clkoffset_res",
	7:   "LMP_detach",
	8:   "LMP_in_rand",
	9:   "LMP_comb_key",
	10:  "LMP_unit_key",
	11:  "LMP_au_rand",
	12:  "LMP_sres",
	13:  "LMP_temp_rand",
	14:  "LMP_temp_key",
	15:  "LMP_encryption_mode_req",
	16:  "LMP_encryption_key_size_req",
	17:  "LMP_start_encryption_req",
	18:  "LMP_stop_encryption_req",
	19:  "LMP_switch_req",
	20:  "LMP_hold",
	21:  "LMP_hold_req",
	23:  "LMP_sniff_req",
	24:  "LMP_unsniff_req",
	25:  "LMP_park_req",
	27:  "LMP_set_broadcast_scan_window",
	28:  "LMP_modify_beacon",
	29:  "LMP_unpark_BD_ADDR_req",
	30:  "LMP_unpark_PM_ADDR_req",
	31:  "LMP_incr_power_req",
	32:  "LMP_decr_power_req",
	33:  "LMP_max_power",
	34:  "LMP_min_power",
	35:  "LMP_auto_rate",
	36:  "LMP_preferred_rate",
	37:  "LMP_version_req",
	38:  "LMP_version_res",
	39:  "LMP_features_req",
	40:  "LMP_features_res",
	41:  "LMP_quality_of_service",
	42:  "LMP_quality_of_service_req",
	43:  "LMP_SCO_link_req",
	44:  "LMP_remove_SCO_link_req",
	45:  "LMP_max_slot",
	46:  "LMP_max_slot_req",
	47:  "LMP_timing_accuracy_req",
	48:  "LMP_timing_accuracy_res",
	49:  "LMP_setup_complete",
	50:  "LMP_use_semi_permanent_key",
	51:  "LMP_host_connection_req",
	52:  "LMP_slot_offset",
	53:  "LMP_page_mode_req",
	54:  "LMP_page_scan_mode_req",
	55:  "LMP_supervision_timeout",
	56:  "LMP_test_activate",
	57:  "LMP_test_control",
	58:  "LMP_encryption_key_size_mask_req",
	59:  "LMP_encryption_key_size_mask_res",
	60:  "LMP_set_AFH",
	61:  "LMP_encapsulated_header",
	62:  "LMP_encapsulated_payload",
	63:  "LMP_Simple_Pairing_Confirm",
	64:  "LMP_Simple_Pairing_Number",
	65:  "LMP_DHkey_Check",
	124: "Escape 1",
	125: "Escape 2",
	126: "Escape 3",
	127: "Escape 4",
}

var extOpcodeNames = map[uint64]string{
	1:  "LMP_accepted_ext",
	2:  "LMP_not_accepted_ext",
	3:  "LMP_features_req_ext",
	4:  "LMP_features_res_ext",
	11: "LMP_packet_type_table_req",
	12: "LMP_eSCO_link_req",
	13: "LMP_remove_eSCO_link_req",
	16: "LMP_channel_classification_req",
	17: "LMP_channel_classification",
	21: "LMP_sniff_subrating_req",
	22: "LMP_sniff_subrating_res",
	23: "LMP_pause_encryption_req",
	24: "LMP_resume_encryption_req",
	25: "LMP_IO_Capability_req",
	26: "LMP_IO_Capability_res",
	27: "LMP_numeric_comparison_failed",
	28: "LMP_passkey_failed",
	29: "LMP_oob_failed",
	30: "LMP_keypress_notification",
	31: "LMP_power_control_req",
	32: "LMP_power_control_res",
	33: "LMP_ping_req",
	34: "LMP_ping_res",
}

var errorCodeNames = map[uint64]string{
	0:  "Success",
	1:  "Unknown HCI Command",
	2:  "Unknown Connection Identifier",
	3:  "Hardware Failure",
	4:  "Page Timeout",
	5:  "Authentication Failure",
	6:  "PIN or Key Missing",
	7:  "Memory Capacity Exceeded",
	8:  "Connection Timeout",
	9:  "Connection Limit Exceeded",
	10: "Synchronous Connection Limit To A Device Exceeded",
	11: "ACL Connection Already Exists",
	12: "Command Disallowed",
	13: "Connection Rejected due to Limited Resources",
	14: "Connection Rejected Due To Security Reasons",
	15: "Connection Rejected due to Unacceptable BD_ADDR",
	16: "Connection Accept Timeout Exceeded",
	17: "Unsupported Feature or Parameter Value",
	18: "Invalid HCI Command Parameters",
	19: "Remote User Terminated Connection",
	20: "Remote Device Terminated Connection due to Low Resources",
	21: "Remote Device Terminated Connection due to Power Off",
	22: "Connection Terminated By Local Host",
	23: "Repeated Attempts",
	24: "Pairing Not Allowed",
	25: "Unknown LMP PDU",
	26: "Unsupported Remote Feature / Unsupported LMP Feature",
	27: "SCO Offset Rejected",
	28: "SCO Interval Rejected",
	29: "SCO Air Mode Rejected",
	30: "Invalid LMP Parameters",
	31: "Unspecified Error",
	32: "Unsupported LMP Parameter Value",
	33: "Role Change Not Allowed",
	34: "LMP Response Timeout",
	35: "LMP Error Transaction Collision",
	36: "LMP PDU Not Allowed",
	37: "Encryption Mode Not Acceptable",
	38: "Link Key Can Not be Changed",
	39: "Requested QoS Not Supported",
	40: "Instant Passed",
	41: "Pairing With Unit Key Not Supported",
	42: "Different Transaction Collision",
	43: "Reserved",
	44: "QoS Unacceptable Parameter",
	45: "QoS Rejected",
	46: "Channel Classification Not Supported",
	47: "Insufficient Security",
	48: "Parameter Out Of Mandatory Range",
	49: "Reserved",
	50: "Role Switch Pending",
	51: "Reserved",
	52: "Reserved Slot Violation",
	53: "Role Switch Failed",
	54: "Extended Inquiry Response Too Large",
	55: "Secure Simple Pairing Not Supported By Host.",
	56: "Host Busy - Pairing",
	57: "Connection Rejected due to No Suitable Channel Found",
}

var versionNames = map[uint64]string{
	0:  "1.0b",
	1:  "1.1",
	2:  "1.2",
	3:  "2.0 + EDR",
	4:  "2.1 + EDR",
	5:  "3.0 + HS",
	6:  "4.0",
	7:  "4.1",
	8:  "4.2",
	9:  "5.0",
	10: "5.1",
	11: "5.2",
}

var powerAdjustmentNames = map[uint64]string{
	0: "not supported",
	1: "changed one step (not min or max)",
	2: "max power",
	3: "min power",
}

// Feature flag names, indexed by bit position from the LSB of the
// 64-bit features value, matching the order the original sniffer
// displays them in.
var featureNames = []string{
	"lstimche", "inqtxpwr", "enhpwr", "res5", "res6", "res7", "res8", "extfeat",
	"extinqres", "simlebredr", "res3", "ssp", "enpdu", "edr", "nonflush", "res4",
	"5slotenh", "sniffsubr", "pauseenc", "afhcapma", "afhclama", "esco2", "esco3", "3slotenhesco",
	"ev4", "ev5", "res2", "afhcapsl", "afhclasl", "bredrnotsup", "lesup", "3slotenh",
	"res1", "acl2", "acl3", "eninq", "intinq", "intpag", "rssiinq", "ev3",
	"cvsd", "pagneg", "pwrctl", "transsync", "flowctl1", "flowctl2", "flowctl3", "bcenc",
	"res0", "pwrctlreq", "cqddr", "sco", "hv2", "hv3", "mulaw", "alaw",
	"3slot", "5slot", "enc", "slotoff", "timacc", "rolesw", "holdmo", "sniffmo",
}

var extFeatureNamesPage1 = []string{
	"un48", "un49", "un50", "un51", "un52", "un53", "un54", "un55",
	"un56", "un57", "un58", "un59", "un60", "un61", "un62", "un63",
	"un40", "un41", "un42", "un43", "un44", "un45", "un46", "un47",
	"un32", "un33", "un34", "un35", "un36", "un37", "un38", "un39",
	"un24", "un25", "un26", "un27", "un28", "un29", "un30", "un31",
	"un16", "un17", "un18", "un19", "un20", "un21", "un22", "un23",
	"un8", "un9", "un10", "un11", "un12", "un13", "un14", "un15",
	"ssp", "lesup", "lebredr", "sch", "un4", "un5", "un6", "un7",
}

var extFeatureNamesPage2 = []string{
	"un48", "un49", "un50", "un51", "un52", "un53", "un54", "un55",
	"un56", "un57", "un58", "un59", "un60", "un61", "un62", "un63",
	"un40", "un41", "un42", "un43", "un44", "un45", "un46", "un47",
	"un32", "un33", "un34", "un35", "un36", "un37", "un38", "un39",
	"un24", "un25", "un26", "un27", "un28", "un29", "un30", "un31",
	"un16", "un17", "un18", "un19", "un20", "un21", "un22", "un23",
	"scc", "ping", "res1", "trnud", "sam", "un13", "un14", "un15",
	"csbma", "csbsl", "syntr", "synsc", "inqresnote", "genintsc", "ccadj", "res0",
}

// OpcodeName returns the display name for a base opcode.
func OpcodeName(op uint8) string {
	if n, ok := opcodeNames[uint64(op)]; ok {
		return n
	}
	return "Unknown"
}

// ExtOpcodeName returns the display name for an extended opcode.
func ExtOpcodeName(op uint8) string {
	if n, ok := extOpcodeNames[uint64(op)]; ok {
		return n
	}
	return "Unknown"
}
