package main

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/segmentio/ksuid"
)

type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Color string `json:"color"`
}

// document is a generated vehicle with its id.
type document struct {
	ID      string
	Vehicle Vehicle
}

var (
	makes = map[string][]string{
		"Toyota":    {"Camry", "Corolla", "Prius", "RAV4", "Highlander", "Tacoma", "4Runner"},
		"Honda":     {"Civic", "Accord", "CR-V", "Pilot", "Fit", "HR-V", "Ridgeline"},
		"Ford":      {"F-150", "Mustang", "Explorer", "Escape", "Focus", "Fusion", "Bronco"},
		"BMW":       {"3 Series", "5 Series", "X3", "X5", "i3", "i8", "Z4"},
		"Mercedes":  {"C-Class", "E-Class", "S-Class", "GLC", "GLE", "A-Class", "CLA"},
		"Audi":      {"A3", "A4", "A6", "Q3", "Q5", "Q7", "TT"},
		"Chevrolet": {"Silverado", "Equinox", "Malibu", "Tahoe", "Suburban", "Camaro", "Corvette"},
		"Nissan":    {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Titan", "370Z"},
	}

	colors = []string{
		"Red", "Blue", "Black", "White", "Silver", "Gray", "Green", "Yellow", "Orange", "Purple",
	}

	// Map iteration order is random; the sorted keys keep seeded runs stable.
	makeKeys = sortedKeys(makes)
)

// epoch anchors generated ids, so a seeded run always yields the same ids.
var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func generateRandomVehicle(rng *rand.Rand) Vehicle {
	selectedMake := makeKeys[rng.IntN(len(makeKeys))]
	models := makes[selectedMake]

	return Vehicle{
		Make:  selectedMake,
		Model: models[rng.IntN(len(models))],
		Year:  rng.IntN(10) + 2015, // 2015-2024
		Color: colors[rng.IntN(len(colors))],
	}
}

func generateID(rng *rand.Rand, at time.Time) string {
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(rng.UintN(256))
	}
	id, err := ksuid.FromParts(at, payload)
	if err != nil {
		return ksuid.New().String()
	}
	return id.String()
}

func generateDocuments(rng *rand.Rand, count int) []document {
	docs := make([]document, 0, count)
	for i := 0; i < count; i++ {
		docs = append(docs, document{
			ID:      generateID(rng, epoch.Add(time.Duration(i)*time.Second)),
			Vehicle: generateRandomVehicle(rng),
		})
	}
	return docs
}

type hitJSON struct {
	Index     string              `json:"_index"`
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    Vehicle             `json:"_source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

type termJSON struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type termsFacetJSON struct {
	Type    string     `json:"_type"`
	Missing int        `json:"missing"`
	Total   int        `json:"total"`
	Other   int        `json:"other"`
	Terms   []termJSON `json:"terms"`
}

type responseJSON struct {
	Took     int  `json:"took"`
	TimedOut bool `json:"timed_out"`
	Hits     struct {
		Total    int       `json:"total"`
		MaxScore *float64  `json:"max_score"`
		Hits     []hitJSON `json:"hits"`
	} `json:"hits"`
	Facets map[string]termsFacetJSON `json:"facets"`
}

// buildResponse renders docs as a search response, ranked in generation
// order. Hits whose make equals highlight carry a highlighted make.
func buildResponse(docs []document, highlight string) ([]byte, error) {
	var res responseJSON
	res.Took = 1
	res.Hits.Total = len(docs)
	res.Hits.Hits = make([]hitJSON, 0, len(docs))

	makeCounts := make(map[string]int)
	colorCounts := make(map[string]int)

	for i, doc := range docs {
		score := float64(len(docs)-i) / float64(len(docs))
		if res.Hits.MaxScore == nil {
			res.Hits.MaxScore = &score
		}

		hit := hitJSON{
			Index:  indexName,
			ID:     doc.ID,
			Score:  score,
			Source: doc.Vehicle,
		}
		if highlight != "" && strings.EqualFold(doc.Vehicle.Make, highlight) {
			hit.Highlight = map[string][]string{
				"make": {"<em>" + doc.Vehicle.Make + "</em>"},
			}
		}
		res.Hits.Hits = append(res.Hits.Hits, hit)

		makeCounts[doc.Vehicle.Make]++
		colorCounts[doc.Vehicle.Color]++
	}

	res.Facets = map[string]termsFacetJSON{
		"make":  termsFacet(makeCounts),
		"color": termsFacet(colorCounts),
	}

	data, err := sonic.ConfigStd.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search response: %w", err)
	}
	return data, nil
}

func termsFacet(counts map[string]int) termsFacetJSON {
	facet := termsFacetJSON{
		Type:  "terms",
		Terms: make([]termJSON, 0, len(counts)),
	}
	for term, count := range counts {
		facet.Terms = append(facet.Terms, termJSON{Term: term, Count: count})
		facet.Total += count
	}
	sort.Slice(facet.Terms, func(i, j int) bool {
		if facet.Terms[i].Count != facet.Terms[j].Count {
			return facet.Terms[i].Count > facet.Terms[j].Count
		}
		return facet.Terms[i].Term < facet.Terms[j].Term
	})
	return facet
}
