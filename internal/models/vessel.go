package models

// Position is a WGS84 coordinate in decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies inside the representable range.
func (p Position) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// OwnVessel captures the host vessel's kinematics for one evaluation cycle.
// Position is nil when no fix is available.
type OwnVessel struct {
	Position  *Position `json:"position"`
	SpeedKts  float64   `json:"speed"`
	CourseDeg float64   `json:"course"`
}

// Target is one tracked vessel, identity already resolved upstream.
type Target struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  *Position `json:"position"`
	SpeedKts  float64   `json:"speed"`
	CourseDeg float64   `json:"course"`
	ShipType  string    `json:"ship_type,omitempty"`
	Callsign  string    `json:"callsign,omitempty"`
}
