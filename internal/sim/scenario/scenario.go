// Package scenario loads the bulk start-of-session definition (countries,
// provinces, initial relations) that feeds the store once at startup. Files
// are validated against a JSON schema before any unmarshalling-derived state
// reaches the world.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"hegemony.sim/internal/protocol"
	"hegemony.sim/internal/sim/fixed"
	"hegemony.sim/internal/sim/state"
	"hegemony.sim/internal/sim/world"
)

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "countries", "provinces"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "countries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "tag"],
        "properties": {
          "id": {"type": "integer", "minimum": 1, "maximum": 65535},
          "tag": {"type": "string", "minLength": 2, "maxLength": 3},
          "name": {"type": "string"}
        }
      }
    },
    "provinces": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "integer", "minimum": 1, "maximum": 65535},
          "owner": {"type": "integer", "minimum": 0, "maximum": 65535},
          "terrain": {"type": "string"},
          "fort": {"type": "integer", "minimum": 0, "maximum": 255},
          "coastal": {"type": "boolean"},
          "capital": {"type": "boolean"}
        }
      }
    },
    "relations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["a", "b"],
        "properties": {
          "a": {"type": "integer", "minimum": 1, "maximum": 65535},
          "b": {"type": "integer", "minimum": 1, "maximum": 65535},
          "base_opinion": {"type": "string"},
          "alliance": {"type": "boolean"},
          "at_war": {"type": "boolean"}
        }
      }
    }
  }
}`

var terrainNames = map[string]state.TerrainType{
	"plains":   state.TerrainPlains,
	"forest":   state.TerrainForest,
	"hills":    state.TerrainHills,
	"mountain": state.TerrainMountain,
	"desert":   state.TerrainDesert,
	"marsh":    state.TerrainMarsh,
	"ocean":    state.TerrainOcean,
}

type Scenario struct {
	Name      string     `json:"name"`
	Countries []Country  `json:"countries"`
	Provinces []Province `json:"provinces"`
	Relations []Relation `json:"relations,omitempty"`
}

type Country struct {
	ID   uint16 `json:"id"`
	Tag  string `json:"tag"`
	Name string `json:"name,omitempty"`
}

type Province struct {
	ID      uint16 `json:"id"`
	Owner   uint16 `json:"owner,omitempty"`
	Terrain string `json:"terrain,omitempty"`
	Fort    uint8  `json:"fort,omitempty"`
	Coastal bool   `json:"coastal,omitempty"`
	Capital bool   `json:"capital,omitempty"`
}

type Relation struct {
	A           uint16 `json:"a"`
	B           uint16 `json:"b"`
	BaseOpinion string `json:"base_opinion,omitempty"`
	Alliance    bool   `json:"alliance,omitempty"`
	AtWar       bool   `json:"at_war,omitempty"`
}

var schema = jsonschema.MustCompileString("scenario.schema.json", schemaJSON)

// Load reads and validates a scenario file.
func Load(path string) (Scenario, error) {
	var sc Scenario
	raw, err := os.ReadFile(path)
	if err != nil {
		return sc, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return sc, fmt.Errorf("scenario: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return sc, fmt.Errorf("scenario schema: %w", err)
	}
	if err := json.Unmarshal(raw, &sc); err != nil {
		return sc, fmt.Errorf("scenario: %w", err)
	}
	return sc, nil
}

// Apply feeds the scenario into a freshly constructed world. Individual
// rejected entries (duplicates, capacity) are collected in the result rather
// than aborting the load; the world keeps everything that was accepted.
func Apply(sc Scenario, w *world.World) protocol.LoadResult {
	res := protocol.LoadResult{OK: true}

	for _, c := range sc.Countries {
		if code := w.AddCountry(world.CountryID(c.ID)); code != "" {
			res.Rejected = append(res.Rejected, protocol.LoadRejection{Country: protocol.CountryID(c.ID), Code: code})
			continue
		}
		res.Countries++
	}

	for _, p := range sc.Provinces {
		st := state.ProvinceState{
			Owner: world.CountryID(p.Owner),
			Fort:  p.Fort,
		}
		if t, ok := terrainNames[p.Terrain]; ok {
			st.Terrain = t
		}
		if p.Coastal {
			st.Flags |= state.FlagCoastal
		}
		if p.Capital {
			st.Flags |= state.FlagCapital
		}
		if code := w.AddProvince(world.ProvinceID(p.ID), st); code != "" {
			res.Rejected = append(res.Rejected, protocol.LoadRejection{Province: protocol.ProvinceID(p.ID), Code: code})
			continue
		}
		res.Provinces++
	}

	for _, r := range sc.Relations {
		a, b := world.CountryID(r.A), world.CountryID(r.B)
		if r.BaseOpinion != "" {
			base, err := fixed.Parse(r.BaseOpinion)
			if err != nil {
				res.Rejected = append(res.Rejected, protocol.LoadRejection{Country: a, Code: protocol.ErrBadScenario})
				continue
			}
			w.SetBaseOpinion(a, b, base)
		}
		if r.Alliance {
			w.SetAlliance(a, b, true)
		}
		if r.AtWar {
			w.DeclareWar(a, b)
		}
	}

	w.InitComplete()
	if len(res.Rejected) > 0 {
		res.OK = false
		res.Code = protocol.ErrBadScenario
	}
	return res
}
