package model

type LivestockType string

const (
	LivestockCattle  LivestockType = "cattle"
	LivestockGoats   LivestockType = "goats"
	LivestockSheep   LivestockType = "sheep"
	LivestockPoultry LivestockType = "poultry"
	LivestockPigs    LivestockType = "pigs"
	LivestockRabbits LivestockType = "rabbits"
	LivestockFish    LivestockType = "fish"
	LivestockOthers  LivestockType = "others"
)

func LivestockTypes() []LivestockType {
	return []LivestockType{
		LivestockCattle, LivestockGoats, LivestockSheep, LivestockPoultry,
		LivestockPigs, LivestockRabbits, LivestockFish, LivestockOthers,
	}
}

func (t LivestockType) Valid() bool {
	_, ok := animalTypes[t]
	return ok
}

// AnimalType is one entry of the closed animal-type set for a livestock type.
type AnimalType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var animalTypes = map[LivestockType][]AnimalType{
	LivestockCattle: {
		{"cow", "Cow"}, {"bull", "Bull"}, {"calf", "Calf"},
		{"heifer", "Heifer"}, {"ox", "Ox"},
	},
	LivestockGoats: {
		{"meat", "Meat Goat"}, {"milk", "Dairy Goat"}, {"kid", "Kid"},
		{"buck", "Buck"}, {"doe", "Doe"},
	},
	LivestockSheep: {
		{"lamb", "Lamb"}, {"mutton", "Mutton"}, {"ram", "Ram"},
		{"ewe", "Ewe"}, {"lamb_meat", "Lamb Meat"},
	},
	LivestockPoultry: {
		{"meat", "Meat Chicken"}, {"eggs", "Layer Chicken"}, {"broiler", "Broiler"},
		{"rooster", "Rooster"}, {"hen", "Hen"}, {"chick", "Chick"},
	},
	LivestockPigs: {
		{"pork", "Pork"}, {"bacon", "Bacon"}, {"sow", "Sow"},
		{"boar", "Boar"}, {"piglet", "Piglet"},
	},
	LivestockRabbits: {
		{"meat", "Rabbit Meat"}, {"doe_rabbit", "Doe Rabbit"},
		{"buck_rabbit", "Buck Rabbit"}, {"fryer", "Fryer"},
	},
	LivestockFish: {
		{"tilapia", "Tilapia"}, {"catfish", "Catfish"}, {"trout", "Trout"},
		{"salmon", "Salmon"}, {"freshwater", "Freshwater Fish"}, {"saltwater", "Saltwater Fish"},
	},
	LivestockOthers: {
		{"bees", "Bees/Honey"}, {"snails", "Snails"}, {"guinea_fowl", "Guinea Fowl"},
		{"turkey", "Turkey"}, {"duck", "Duck"},
	},
}

// AnimalTypesFor returns the permitted animal types for a livestock type.
// Unknown livestock types yield an empty set.
func AnimalTypesFor(t LivestockType) []AnimalType {
	return animalTypes[t]
}

// ValidAnimalType reports whether value belongs to the set derived from t.
func ValidAnimalType(t LivestockType, value string) bool {
	for _, at := range animalTypes[t] {
		if at.Value == value {
			return true
		}
	}
	return false
}

// AnimalTypeLabel resolves the display label, falling back to the raw value.
func AnimalTypeLabel(t LivestockType, value string) string {
	for _, at := range animalTypes[t] {
		if at.Value == value {
			return at.Label
		}
	}
	return value
}
