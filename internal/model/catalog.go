package model

// ItemID identifies one checklist item from the fixed catalog
type ItemID string

// Lighting system
const (
	ItemHighBeam         ItemID = "high_beam"
	ItemLowBeam          ItemID = "low_beam"
	ItemHazardLights     ItemID = "hazard_lights"
	ItemFogLights        ItemID = "fog_lights"
	ItemFrontTurnSignals ItemID = "front_turn_signals"
	ItemRearTurnSignals  ItemID = "rear_turn_signals"
	ItemCabinLights      ItemID = "cabin_lights"
)

// Tires and wheels
const (
	ItemTirePos1  ItemID = "tire_pos_1"
	ItemTirePos2  ItemID = "tire_pos_2"
	ItemTirePos3  ItemID = "tire_pos_3"
	ItemTirePos4  ItemID = "tire_pos_4"
	ItemTirePos5  ItemID = "tire_pos_5"
	ItemTirePos6  ItemID = "tire_pos_6"
	ItemTirePos7  ItemID = "tire_pos_7"
	ItemTirePos8  ItemID = "tire_pos_8"
	ItemSpareTire ItemID = "spare_tire"
)

// Exterior
const (
	ItemFrontWindshield ItemID = "front_windshield"
	ItemRearWindshield  ItemID = "rear_windshield"
	ItemWipers          ItemID = "wipers"
	ItemWindowGlass     ItemID = "window_glass"
	ItemSideMirrors     ItemID = "side_mirrors"
	ItemFuelCap         ItemID = "fuel_cap"
)

// Interior
const (
	ItemDashboard          ItemID = "dashboard_indicators"
	ItemMaxiBrake          ItemID = "maxi_brake"
	ItemServiceBrake       ItemID = "service_brake"
	ItemDriverSeatBelt     ItemID = "driver_seat_belt"
	ItemPassengerSeatBelts ItemID = "passenger_seat_belts"
	ItemCleanliness        ItemID = "order_cleanliness_restroom"
	ItemSteering           ItemID = "steering"
	ItemHorn               ItemID = "horn"
	ItemSeats              ItemID = "seats"
	ItemSaloonLights       ItemID = "passenger_saloon_lights"
)

// Safety equipment
const (
	ItemSafetyCones      ItemID = "safety_cones"
	ItemFireExtinguisher ItemID = "fire_extinguisher"
	ItemHydraulicJack    ItemID = "hydraulic_jack"
	ItemReflectiveVest   ItemID = "reflective_vest"
	ItemWheelChocks      ItemID = "wheel_chocks"
	ItemFirstAidKit      ItemID = "first_aid_kit"
	ItemWheelWrench      ItemID = "wheel_wrench"
	ItemWheelWrenchBar   ItemID = "wheel_wrench_bar"
	ItemForceTube        ItemID = "force_tube"
	ItemForceMultiplier  ItemID = "force_multiplier"
	ItemSafetyTriangles  ItemID = "safety_triangles"
)

// Documentation
const (
	ItemTechnicalInspection ItemID = "technical_inspection"
	ItemEmissionsCert       ItemID = "emissions_certificate"
	ItemCirculationPermit   ItemID = "circulation_permit"
	ItemMandatoryInsurance  ItemID = "mandatory_insurance"
	ItemRegistration        ItemID = "registration"
	ItemRouteLogs           ItemID = "route_logs"
	ItemDriverLicense       ItemID = "driver_license"
	ItemSIBCard             ItemID = "sib_card"
)

// CatalogSection groups checklist items the way they appear on the form
type CatalogSection struct {
	Name  string
	Items []ItemID
}

// Sections is the fixed inspection catalog. The form must answer every item
// of every section before a submission is accepted.
var Sections = []CatalogSection{
	{
		Name: "Lighting System",
		Items: []ItemID{
			ItemHighBeam, ItemLowBeam, ItemHazardLights, ItemFogLights,
			ItemFrontTurnSignals, ItemRearTurnSignals, ItemCabinLights,
		},
	},
	{
		Name: "Tires and Wheels",
		Items: []ItemID{
			ItemTirePos1, ItemTirePos2, ItemTirePos3, ItemTirePos4,
			ItemTirePos5, ItemTirePos6, ItemTirePos7, ItemTirePos8,
			ItemSpareTire,
		},
	},
	{
		Name: "Exterior",
		Items: []ItemID{
			ItemFrontWindshield, ItemRearWindshield, ItemWipers,
			ItemWindowGlass, ItemSideMirrors, ItemFuelCap,
		},
	},
	{
		Name: "Interior",
		Items: []ItemID{
			ItemDashboard, ItemMaxiBrake, ItemServiceBrake,
			ItemDriverSeatBelt, ItemPassengerSeatBelts, ItemCleanliness,
			ItemSteering, ItemHorn, ItemSeats, ItemSaloonLights,
		},
	},
	{
		Name: "Safety Equipment",
		Items: []ItemID{
			ItemSafetyCones, ItemFireExtinguisher, ItemHydraulicJack,
			ItemReflectiveVest, ItemWheelChocks, ItemFirstAidKit,
			ItemWheelWrench, ItemWheelWrenchBar, ItemForceTube,
			ItemForceMultiplier, ItemSafetyTriangles,
		},
	},
	{
		Name: "Documentation",
		Items: []ItemID{
			ItemTechnicalInspection, ItemEmissionsCert, ItemCirculationPermit,
			ItemMandatoryInsurance, ItemRegistration, ItemRouteLogs,
			ItemDriverLicense, ItemSIBCard,
		},
	},
}

// criticalItems are the items whose defect marking auto-rejects the
// submission without human review: brakes, steering, driver restraint,
// mounted tires and main front lights.
var criticalItems = map[ItemID]bool{
	ItemMaxiBrake:      true,
	ItemServiceBrake:   true,
	ItemSteering:       true,
	ItemDriverSeatBelt: true,
	ItemTirePos1:       true,
	ItemTirePos2:       true,
	ItemTirePos3:       true,
	ItemTirePos4:       true,
	ItemTirePos5:       true,
	ItemTirePos6:       true,
	ItemTirePos7:       true,
	ItemTirePos8:       true,
	ItemHighBeam:       true,
	ItemLowBeam:        true,
}

// Critical reports whether a defect on this item triggers auto-rejection
func (i ItemID) Critical() bool {
	return criticalItems[i]
}

var catalogIndex = buildCatalogIndex()

func buildCatalogIndex() map[ItemID]bool {
	index := make(map[ItemID]bool)
	for _, section := range Sections {
		for _, item := range section.Items {
			index[item] = true
		}
	}
	return index
}

// KnownItem reports whether the item belongs to the catalog
func KnownItem(i ItemID) bool {
	return catalogIndex[i]
}

// CatalogItems returns every catalog item in section order
func CatalogItems() []ItemID {
	items := make([]ItemID, 0, len(catalogIndex))
	for _, section := range Sections {
		items = append(items, section.Items...)
	}
	return items
}
