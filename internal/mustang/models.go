package mustang

// KnownModels lists the supported amplifiers by USB product id.
var KnownModels = []DeviceModel{
	{Name: "Mustang I/II", Category: CategoryLegacyV1, NumberOfPresets: 24, ProductID: 0x0004},
	{Name: "Mustang III/IV/V", Category: CategoryLegacyV1, NumberOfPresets: 100, ProductID: 0x0005},
	{Name: "Mustang Bronco 40", Category: CategoryLegacyV1, NumberOfPresets: 24, ProductID: 0x000a},
	{Name: "Mustang Mini", Category: CategoryLegacyV1, NumberOfPresets: 24, ProductID: 0x0010},
	{Name: "Mustang Floor", Category: CategoryLegacyV1, NumberOfPresets: 100, ProductID: 0x0012},
	{Name: "Mustang I/II v2", Category: CategoryLegacyV2, NumberOfPresets: 24, ProductID: 0x0014},
	{Name: "Mustang III/IV/V v2", Category: CategoryLegacyV2, NumberOfPresets: 100, ProductID: 0x0016},
	{Name: "Mustang LT25", Category: CategoryNewerUSB, NumberOfPresets: 30, ProductID: 0x0037},
	{Name: "Rumble LT25", Category: CategoryNewerUSB, NumberOfPresets: 50, ProductID: 0x0038},
	{Name: "Mustang LT40S", Category: CategoryNewerUSB, NumberOfPresets: 60, ProductID: 0x0046},
	{Name: "Mustang GT40", Category: CategoryNewerBluetooth, ProductID: 0x0032},
	{Name: "Mustang GT100", Category: CategoryNewerBluetooth, ProductID: 0x0033},
	{Name: "Mustang GT200", Category: CategoryNewerBluetooth, ProductID: 0x0034},
}

// LookupModel returns the model for a USB product id.
func LookupModel(productID uint16) (DeviceModel, bool) {
	for _, m := range KnownModels {
		if m.ProductID == productID {
			return m, true
		}
	}
	return DeviceModel{}, false
}
