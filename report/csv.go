// Package report renders optimizer results as CSV tables, PNG plots and an
// HTML page.
package report

import (
	"fmt"
	"io"

	"github.com/Ksonar262/RFID"
	"github.com/gocarina/gocsv"
)

type historyRecord struct {
	Iteration   int     `csv:"iteration"`
	BestFitness float64 `csv:"best_fitness"`
}

type placementRecord struct {
	Antenna int `csv:"antenna"`
	Row     int `csv:"row"`
	Col     int `csv:"col"`
}

type eliteRecord struct {
	Rank      int     `csv:"rank"`
	Fitness   float64 `csv:"fitness"`
	Placement string  `csv:"placement"`
}

// WriteHistoryCSV writes one row per iteration, numbered from 1.
func WriteHistoryCSV(w io.Writer, history []float64) error {
	records := make([]historyRecord, len(history))
	for i, v := range history {
		records[i] = historyRecord{Iteration: i + 1, BestFitness: v}
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

func WritePlacementCSV(w io.Writer, p rfid.Placement) error {
	records := make([]placementRecord, len(p))
	for i, c := range p {
		records[i] = placementRecord{Antenna: i, Row: c.Row, Col: c.Col}
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing placement: %w", err)
	}
	return nil
}

// WriteEliteCSV writes points in the given order, ranked from 1.
func WriteEliteCSV(w io.Writer, points []rfid.Point) error {
	records := make([]eliteRecord, len(points))
	for i, p := range points {
		records[i] = eliteRecord{Rank: i + 1, Fitness: p.Val, Placement: fmt.Sprint(p.Pos())}
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing elite: %w", err)
	}
	return nil
}
