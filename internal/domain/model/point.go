package model

// PointID identifies a celestial body, chart angle or symbolic point.
type PointID string

const (
	Sun     PointID = "Sun"
	Moon    PointID = "Moon"
	Mercury PointID = "Mercury"
	Venus   PointID = "Venus"
	Mars    PointID = "Mars"
	Jupiter PointID = "Jupiter"
	Saturn  PointID = "Saturn"
	Uranus  PointID = "Uranus"
	Neptune PointID = "Neptune"
	Pluto   PointID = "Pluto"

	MeanNode      PointID = "Mean_Node"
	TrueNode      PointID = "True_Node"
	MeanSouthNode PointID = "Mean_South_Node"
	TrueSouthNode PointID = "True_South_Node"

	Chiron     PointID = "Chiron"
	MeanLilith PointID = "Mean_Lilith"
	TrueLilith PointID = "True_Lilith"
	Earth      PointID = "Earth"
	Pholus     PointID = "Pholus"
	Ceres      PointID = "Ceres"
	Pallas     PointID = "Pallas"
	Juno       PointID = "Juno"
	Vesta      PointID = "Vesta"

	Eris     PointID = "Eris"
	Sedna    PointID = "Sedna"
	Haumea   PointID = "Haumea"
	Makemake PointID = "Makemake"
	Ixion    PointID = "Ixion"
	Orcus    PointID = "Orcus"
	Quaoar   PointID = "Quaoar"

	Regulus PointID = "Regulus"
	Spica   PointID = "Spica"

	ParsFortunae PointID = "Pars_Fortunae"
	ParsSpiritus PointID = "Pars_Spiritus"
	ParsAmoris   PointID = "Pars_Amoris"
	ParsFidei    PointID = "Pars_Fidei"

	Vertex     PointID = "Vertex"
	AntiVertex PointID = "Anti_Vertex"

	Ascendant   PointID = "Ascendant"
	MediumCoeli PointID = "Medium_Coeli"
	Descendant  PointID = "Descendant"
	ImumCoeli   PointID = "Imum_Coeli"
)

// AllPoints lists every known point in catalog order.
var AllPoints = []PointID{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto,
	MeanNode, TrueNode, MeanSouthNode, TrueSouthNode,
	Chiron, MeanLilith, TrueLilith, Earth, Pholus, Ceres, Pallas, Juno, Vesta,
	Eris, Sedna, Haumea, Makemake, Ixion, Orcus, Quaoar,
	Regulus, Spica,
	ParsFortunae, ParsSpiritus, ParsAmoris, ParsFidei,
	Vertex, AntiVertex,
	Ascendant, MediumCoeli, Descendant, ImumCoeli,
}

// DefaultActivePoints is used when a request names no points.
var DefaultActivePoints = []PointID{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto,
	TrueNode, TrueSouthNode, Chiron, MeanLilith,
	Ascendant, MediumCoeli, Descendant, ImumCoeli,
}

var knownPoints = func() map[PointID]struct{} {
	m := make(map[PointID]struct{}, len(AllPoints))
	for _, id := range AllPoints {
		m[id] = struct{}{}
	}
	return m
}()

// Known reports whether id is part of the catalog.
func (id PointID) Known() bool {
	_, ok := knownPoints[id]
	return ok
}

// Axial reports whether id is a chart angle. Angles are never retrograde.
func (id PointID) Axial() bool {
	switch id {
	case Ascendant, MediumCoeli, Descendant, ImumCoeli, Vertex, AntiVertex:
		return true
	}
	return false
}

// MainAxis reports whether id is one of the four horizon/meridian angles.
func (id PointID) MainAxis() bool {
	switch id {
	case Ascendant, MediumCoeli, Descendant, ImumCoeli:
		return true
	}
	return false
}

// Part reports whether id is a symbolic part (Arabic lot).
func (id PointID) Part() bool {
	switch id {
	case ParsFortunae, ParsSpiritus, ParsAmoris, ParsFidei:
		return true
	}
	return false
}

// FromHouseFrame reports whether the oracle reports id together with the house cusps.
func (id PointID) FromHouseFrame() bool {
	return id == Ascendant || id == MediumCoeli || id == Vertex
}

// Placement is the raw position of a point before house annotation.
type Placement struct {
	ID          PointID `json:"id"`
	AbsPos      float64 `json:"abs_pos"`
	Speed       float64 `json:"speed"` // deg/day, negative when moving backwards
	Declination float64 `json:"declination"`
	HasDecl     bool    `json:"has_declination"`
}

// Point is a fully annotated chart point. Values are produced by
// annotation and are never changed afterwards.
type Point struct {
	Placement
	House        int     `json:"house"`
	Retrograde   bool    `json:"retrograde"`
	Sign         Sign    `json:"sign"`
	SignPosition float64 `json:"sign_position"`
}
