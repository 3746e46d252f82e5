// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package esi

// Position is a point in a solar system, in metres.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Station struct {
	StationID                int32    `json:"station_id"`
	Name                     string   `json:"name"`
	SystemID                 int32    `json:"system_id"`
	TypeID                   int32    `json:"type_id"`
	Owner                    int32    `json:"owner,omitempty"`
	RaceID                   int32    `json:"race_id,omitempty"`
	ReprocessingEfficiency   float64  `json:"reprocessing_efficiency"`
	ReprocessingStationsTake float64  `json:"reprocessing_stations_take"`
	OfficeRentalCost         float64  `json:"office_rental_cost"`
	MaxDockableShipVolume    float64  `json:"max_dockable_ship_volume"`
	Services                 []string `json:"services"`
	Position                 Position `json:"position"`
}

type Structure struct {
	Name          string   `json:"name"`
	OwnerID       int32    `json:"owner_id"`
	SolarSystemID int32    `json:"solar_system_id"`
	TypeID        int32    `json:"type_id,omitempty"`
	Position      Position `json:"position"`
}

type System struct {
	SystemID        int32   `json:"system_id"`
	Name            string  `json:"name"`
	ConstellationID int32   `json:"constellation_id"`
	SecurityStatus  float64 `json:"security_status"`
	SecurityClass   string  `json:"security_class,omitempty"`
	StarID          int32   `json:"star_id,omitempty"`
	Stargates       []int32 `json:"stargates,omitempty"`
	Stations        []int32 `json:"stations,omitempty"`
}

type Constellation struct {
	ConstellationID int32   `json:"constellation_id"`
	Name            string  `json:"name"`
	RegionID        int32   `json:"region_id"`
	Systems         []int32 `json:"systems"`
}

type Region struct {
	RegionID       int32   `json:"region_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Constellations []int32 `json:"constellations"`
}

// Type is an inventory type, i.e. an item.
type Type struct {
	TypeID         int32   `json:"type_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	GroupID        int32   `json:"group_id"`
	MarketGroupID  int32   `json:"market_group_id,omitempty"`
	Volume         float64 `json:"volume,omitempty"`
	PackagedVolume float64 `json:"packaged_volume,omitempty"`
	PortionSize    int32   `json:"portion_size,omitempty"`
	Published      bool    `json:"published"`
}

type Corporation struct {
	Name          string  `json:"name"`
	Ticker        string  `json:"ticker"`
	MemberCount   int32   `json:"member_count"`
	CEOID         int32   `json:"ceo_id"`
	AllianceID    int32   `json:"alliance_id,omitempty"`
	TaxRate       float64 `json:"tax_rate"`
	HomeStationID int32   `json:"home_station_id,omitempty"`
}

type Alliance struct {
	Name                  string `json:"name"`
	Ticker                string `json:"ticker"`
	CreatorID             int32  `json:"creator_id"`
	CreatorCorporationID  int32  `json:"creator_corporation_id"`
	ExecutorCorporationID int32  `json:"executor_corporation_id,omitempty"`
	DateFounded           string `json:"date_founded"`
}

// SearchResult holds the IDs matched per category.
type SearchResult struct {
	Agent         []int32 `json:"agent,omitempty"`
	Alliance      []int32 `json:"alliance,omitempty"`
	Character     []int32 `json:"character,omitempty"`
	Constellation []int32 `json:"constellation,omitempty"`
	Corporation   []int32 `json:"corporation,omitempty"`
	Faction       []int32 `json:"faction,omitempty"`
	InventoryType []int32 `json:"inventory_type,omitempty"`
	Region        []int32 `json:"region,omitempty"`
	SolarSystem   []int32 `json:"solar_system,omitempty"`
	Station       []int32 `json:"station,omitempty"`
	Structure     []int64 `json:"structure,omitempty"`
}

type PriceItem struct {
	TypeID        int32   `json:"type_id"`
	AdjustedPrice float64 `json:"adjusted_price,omitempty"`
	AveragePrice  float64 `json:"average_price,omitempty"`
}

type CostIndex struct {
	Activity  string  `json:"activity"`
	CostIndex float64 `json:"cost_index"`
}

type IndustrialSystem struct {
	SolarSystemID int32       `json:"solar_system_id"`
	CostIndices   []CostIndex `json:"cost_indices"`
}

type MarketOrder struct {
	OrderID      int64   `json:"order_id"`
	TypeID       int32   `json:"type_id"`
	LocationID   int64   `json:"location_id"`
	SystemID     int32   `json:"system_id"`
	IsBuyOrder   bool    `json:"is_buy_order"`
	Price        float64 `json:"price"`
	VolumeTotal  int32   `json:"volume_total"`
	VolumeRemain int32   `json:"volume_remain"`
	MinVolume    int32   `json:"min_volume"`
	Duration     int32   `json:"duration"`
	Issued       string  `json:"issued"`
	Range        string  `json:"range"`
}
