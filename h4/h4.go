// Package h4 classifies and dissects H4 UART transport frames with the
// Broadcom/ESP32 vendor extensions used by the BR/EDR sniffer bridge,
// delegating LMP-bearing payloads to the lmp decoder.
package h4

// H4 packet type byte. 0x08 and 0x09 are the sniffer bridge's vendor
// types carrying raw baseband traffic.
const (
	PacketTypeAck         = 0x00
	PacketTypeCommand     = 0x01
	PacketTypeACLData     = 0x02
	PacketTypeSync        = 0x03
	PacketTypeEvent       = 0x04
	PacketTypeReserve     = 0x05
	PacketTypeDiag        = 0x07
	PacketTypeBasebandACL = 0x08
	PacketTypeESP32BREDR  = 0x09
	PacketTypeVendor      = 0x0e
	PacketTypeLinkControl = 0x0f
)

var packetTypeNames = map[uint64]string{
	PacketTypeAck:         "Acknowledgement",
	PacketTypeCommand:     "Command",
	PacketTypeACLData:     "ACL Data",
	PacketTypeSync:        "Synchronous",
	PacketTypeEvent:       "Event",
	PacketTypeReserve:     "Reserve",
	PacketTypeDiag:        "Diag",
	PacketTypeBasebandACL: "Baseband ACL",
	PacketTypeESP32BREDR:  "ESP32 BR/EDR",
	PacketTypeVendor:      "Vendor",
	PacketTypeLinkControl: "Link Control",
}

// BCM diagnostic channel sub-types. LM_SENT and LM_RECV frames carry
// an LMP PDU.
const (
	DiagLMSent     = 0x00
	DiagLMRecv     = 0x01
	DiagACLBRResp  = 0x02
	DiagACLEDRResp = 0x03
	DiagLESent     = 0x04
	DiagLERecv     = 0x05
	DiagLMEnable   = 0x06
)

var diagTypeNames = map[uint64]string{
	DiagLMSent:     "LM_SENT",
	DiagLMRecv:     "LM_RECV",
	DiagACLBRResp:  "ACL_BR_RESP",
	DiagACLEDRResp: "ACL_EDR_RESP",
	DiagLESent:     "LE_SENT",
	DiagLERecv:     "LE_RECV",
	DiagLMEnable:   "LM_ENABLE",
}

// Baseband ACL logical link IDs. LLIDLMP gates LMP delegation.
const (
	LLIDUndefined    = 0x00
	LLIDContinuation = 0x01
	LLIDStart        = 0x02
	LLIDLMP          = 0x03
)

var llidNames = map[uint64]string{
	LLIDUndefined:    "undefined",
	LLIDContinuation: "Continuation fragment of an L2CAP message",
	LLIDStart:        "Start of an L2CAP message or no fragmentation",
	LLIDLMP:          "LMP",
}

var basebandTypeNames = map[uint64]string{
	0x00: "NULL",
	0x01: "POLL",
	0x02: "FHS",
	0x03: "DM1",
	0x04: "DH1/2-DH1",
	0x08: "DV/3-DH1",
}

var roleNames = map[uint64]string{
	0x00: "Master",
	0x01: "Slave",
}

var directionNames = map[uint64]string{
	0x00: "sent",
	0x01: "received",
}

// PacketTypeName returns the display name for an H4 type byte.
func PacketTypeName(t byte) string {
	if n, ok := packetTypeNames[uint64(t)]; ok {
		return n
	}
	return "Unknown"
}
