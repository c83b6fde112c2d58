package fingerprint

// CommonOUIs seeds lookups when no registry file is available. Vendor names
// follow the IEEE registry spelling so phone detection works without it.
var CommonOUIs = map[string]string{
	// Apple
	"00:1B:63": "Apple, Inc.",
	"00:23:12": "Apple, Inc.",
	"28:CF:E9": "Apple, Inc.",
	"3C:07:54": "Apple, Inc.",
	"F0:99:BF": "Apple, Inc.",

	// Samsung
	"00:12:FB": "Samsung Electronics Co.,Ltd",
	"00:16:32": "Samsung Electronics Co.,Ltd",
	"5C:0A:5B": "Samsung Electronics Co.,Ltd",
	"8C:77:12": "Samsung Electronics Co.,Ltd",

	// HTC
	"00:23:76": "HTC Corporation",
	"38:E7:D8": "HTC Corporation",

	// Huawei
	"00:22:A1": "Huawei Symantec Technologies Co.,Ltd.",

	// Google
	"3C:5A:B4": "Google, Inc.",
	"F4:F5:E8": "Google, Inc.",

	// Microsoft
	"00:50:F2": "Microsoft",

	// Motorola
	"9C:D9:17": "Motorola (Wuhan) Mobility Technologies Communication Co., Ltd.",

	// Common access point vendors
	"00:00:0C": "Cisco Systems, Inc",
	"00:14:6C": "NETGEAR",
	"00:1D:7E": "Cisco-Linksys, LLC",
	"14:CC:20": "TP-LINK TECHNOLOGIES CO.,LTD.",
	"00:90:4C": "Epigram, Inc.",
}
