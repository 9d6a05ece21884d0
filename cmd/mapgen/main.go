// Command mapgen produces a scenario file from seeded noise: a square grid of
// provinces with terrain from layered opensimplex fields, partitioned between
// countries by nearest capital. The same seed always yields the same file, so
// generated scenarios are usable in determinism tests.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	opensimplex "github.com/ojrac/opensimplex-go"

	"hegemony.sim/internal/sim/scenario"
)

func main() {
	var (
		out       = flag.String("out", "scenario.json", "output scenario file")
		name      = flag.String("name", "generated", "scenario name")
		side      = flag.Int("side", 24, "grid side length (side*side provinces)")
		countries = flag.Int("countries", 8, "number of countries")
		seed      = flag.Int64("seed", 1, "generation seed")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[mapgen] ", log.LstdFlags)

	if *side < 2 || (*side)*(*side) > 65000 {
		logger.Fatalf("side %d out of range", *side)
	}
	if *countries < 1 || *countries > 250 {
		logger.Fatalf("countries %d out of range", *countries)
	}

	sc := generate(*name, *side, *countries, *seed)
	b, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		logger.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(*out, append(b, '\n'), 0o644); err != nil {
		logger.Fatalf("write %s: %v", *out, err)
	}
	logger.Printf("wrote %s: %d provinces, %d countries (seed %d)", *out, len(sc.Provinces), len(sc.Countries), *seed)
}

type capitalSeat struct {
	country uint16
	x, y    float64
}

func generate(name string, side, countries int, seed int64) scenario.Scenario {
	elev := opensimplex.NewNormalized(seed)
	moist := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed + 2))

	sc := scenario.Scenario{Name: name}

	seats := make([]capitalSeat, countries)
	for i := range seats {
		id := uint16(i + 1)
		seats[i] = capitalSeat{
			country: id,
			x:       rng.Float64() * float64(side),
			y:       rng.Float64() * float64(side),
		}
		sc.Countries = append(sc.Countries, scenario.Country{
			ID:   id,
			Tag:  countryTag(i),
			Name: fmt.Sprintf("Realm %s", countryTag(i)),
		})
	}

	freq := 3.0 / float64(side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			id := uint16(y*side + x + 1)
			e := elev.Eval2(float64(x)*freq, float64(y)*freq)
			m := moist.Eval2(float64(x)*freq, float64(y)*freq)

			p := scenario.Province{ID: id, Terrain: terrainFor(e, m)}
			if p.Terrain != "ocean" {
				p.Owner = nearestSeat(seats, float64(x), float64(y))
				if e > 0.72 {
					p.Fort = 1
				}
			}
			if p.Terrain != "ocean" && coastal(elev, freq, x, y, side) {
				p.Coastal = true
			}
			sc.Provinces = append(sc.Provinces, p)
		}
	}

	markCapitals(&sc, seats, side)
	sc.Relations = neighborRelations(seats)
	return sc
}

// Elevation picks the land/sea split and the relief class; moisture picks
// between the flat-land biomes.
func terrainFor(e, m float64) string {
	switch {
	case e < 0.35:
		return "ocean"
	case e > 0.82:
		return "mountain"
	case e > 0.68:
		return "hills"
	case m > 0.72:
		return "marsh"
	case m > 0.45:
		return "forest"
	case m < 0.22:
		return "desert"
	default:
		return "plains"
	}
}

func coastal(elev opensimplex.Noise, freq float64, x, y, side int) bool {
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx >= side || ny >= side {
			continue
		}
		if elev.Eval2(float64(nx)*freq, float64(ny)*freq) < 0.35 {
			return true
		}
	}
	return false
}

func nearestSeat(seats []capitalSeat, x, y float64) uint16 {
	best := seats[0].country
	bestDist := math.MaxFloat64
	for _, s := range seats {
		dx, dy := s.x-x, s.y-y
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = s.country
		}
	}
	return best
}

// markCapitals flags, per country, the owned land province closest to its
// seat. Countries whose entire claim landed in the ocean get no capital.
func markCapitals(sc *scenario.Scenario, seats []capitalSeat, side int) {
	for _, s := range seats {
		bestIdx, bestDist := -1, math.MaxFloat64
		for i, p := range sc.Provinces {
			if p.Owner != s.country || p.Terrain == "ocean" {
				continue
			}
			x := float64(int(p.ID-1) % side)
			y := float64(int(p.ID-1) / side)
			dx, dy := s.x-x, s.y-y
			if d := dx*dx + dy*dy; d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		if bestIdx >= 0 {
			sc.Provinces[bestIdx].Capital = true
		}
	}
}

// neighborRelations seeds a neutral-to-wary base opinion between countries
// whose seats are close, so generated worlds start with some diplomacy to
// decay and mutate.
func neighborRelations(seats []capitalSeat) []scenario.Relation {
	var rels []scenario.Relation
	for i := 0; i < len(seats); i++ {
		for j := i + 1; j < len(seats); j++ {
			dx := seats[i].x - seats[j].x
			dy := seats[i].y - seats[j].y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist > 10 {
				continue
			}
			opinion := fmt.Sprintf("%d", -int(25-dist*2))
			rels = append(rels, scenario.Relation{
				A:           seats[i].country,
				B:           seats[j].country,
				BaseOpinion: opinion,
			})
		}
	}
	return rels
}

func countryTag(i int) string {
	return fmt.Sprintf("%c%c", 'A'+byte(i/26%26), 'A'+byte(i%26))
}
