/*
Copyright © 2024 the modflow6-swi authors.
This file is part of modflow6-swi.

modflow6-swi is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

modflow6-swi is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with modflow6-swi.  If not, see <http://www.gnu.org/licenses/>.
*/


package swiutil

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	swi "github.com/langevin-usgs/modflow6-swi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// seriesWriter writes an archived series to a file. key identifies the
// run that produced it.
type seriesWriter func(path, key string, s swi.Series) error

var seriesWriters = map[string]seriesWriter{
	".gob":    writeGob,
	".csv":    writeCSV,
	".xlsx":   writeXLSX,
	".sqlite": writeSQLite,
	".db":     writeSQLite,
}

// WriteSeries writes s to path in the format given by the path's
// extension.
func WriteSeries(path, key string, s swi.Series) error {
	w, ok := seriesWriters[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("swi: unsupported output format %q", filepath.Ext(path))
	}
	return w(path, key, s)
}

func writeGob(path, _ string, s swi.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("swi: creating output file: %v", err)
	}
	if err := s.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// header returns the column names of a tabular series file.
func header(s swi.Series) []string {
	h := []string{"step", "time", "dt", "iterations", "converged"}
	if len(s) > 0 {
		for i := range s[0].Zeta {
			h = append(h, fmt.Sprintf("zeta_%d", i))
		}
	}
	return h
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeCSV(path, _ string, s swi.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("swi: creating output file: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header(s)); err != nil {
		f.Close()
		return err
	}
	for _, snap := range s {
		rec := []string{
			strconv.Itoa(snap.Step),
			formatFloat(snap.Time),
			formatFloat(snap.Dt),
			strconv.Itoa(snap.Iterations),
			strconv.FormatBool(snap.Converged),
		}
		for _, z := range snap.Zeta {
			rec = append(rec, formatFloat(z))
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("swi: writing csv: %v", err)
	}
	return f.Close()
}

func writeXLSX(path, key string, s swi.Series) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("zeta")
	if err != nil {
		return fmt.Errorf("swi: writing xlsx: %v", err)
	}
	row := sheet.AddRow()
	for _, h := range header(s) {
		row.AddCell().SetString(h)
	}
	for _, snap := range s {
		row := sheet.AddRow()
		row.AddCell().SetInt(snap.Step)
		row.AddCell().SetFloat(snap.Time)
		row.AddCell().SetFloat(snap.Dt)
		row.AddCell().SetInt(snap.Iterations)
		row.AddCell().SetString(strconv.FormatBool(snap.Converged))
		for _, z := range snap.Zeta {
			row.AddCell().SetFloat(z)
		}
	}

	info, err := file.AddSheet("run")
	if err != nil {
		return fmt.Errorf("swi: writing xlsx: %v", err)
	}
	for _, kv := range [][2]string{
		{"run", key},
		{"version", swi.Version},
		{"steps", strconv.Itoa(len(s))},
		{"nonconverged", strconv.Itoa(s.NonConverged())},
	} {
		row := info.AddRow()
		row.AddCell().SetString(kv[0])
		row.AddCell().SetString(kv[1])
	}
	if err := file.Save(path); err != nil {
		return fmt.Errorf("swi: writing xlsx: %v", err)
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		created TEXT NOT NULL,
		steps INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		run TEXT NOT NULL,
		step INTEGER NOT NULL,
		time REAL NOT NULL,
		dt REAL NOT NULL,
		iterations INTEGER NOT NULL,
		converged INTEGER NOT NULL,
		PRIMARY KEY (run, step)
	)`,
	`CREATE TABLE IF NOT EXISTS zeta (
		run TEXT NOT NULL,
		step INTEGER NOT NULL,
		cell INTEGER NOT NULL,
		zeta REAL NOT NULL,
		PRIMARY KEY (run, step, cell)
	)`,
}

// writeSQLite stores s in the database at path under the run key,
// replacing any earlier rows for the same run. Other runs in the
// database are kept.
func writeSQLite(path, key string, s swi.Series) (retErr error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, table := range []string{"zeta", "snapshots", "runs"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE run = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO runs (run, version, created, steps) VALUES (?, ?, ?, ?)`,
		key, swi.Version, time.Now().UTC().Format(time.RFC3339), len(s)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	snapStmt, err := tx.Prepare(`INSERT INTO snapshots (run, step, time, dt, iterations, converged) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = snapStmt.Close() }()
	zetaStmt, err := tx.Prepare(`INSERT INTO zeta (run, step, cell, zeta) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = zetaStmt.Close() }()
	for _, snap := range s {
		var converged int
		if snap.Converged {
			converged = 1
		}
		if _, err := snapStmt.Exec(key, snap.Step, snap.Time, snap.Dt, snap.Iterations, converged); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		for i, z := range snap.Zeta {
			if _, err := zetaStmt.Exec(key, snap.Step, i, z); err != nil {
				return fmt.Errorf("insert zeta: %w", err)
			}
		}
	}
	return tx.Commit()
}

// PlotSeries draws the interface elevation of every cell through time
// and saves the image to path.
func PlotSeries(path string, s swi.Series) error {
	if len(s) == 0 {
		return fmt.Errorf("swi: no time steps to plot")
	}
	p := plot.New()
	p.Title.Text = "Interface elevation"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Zeta"
	for i := range s[0].Zeta {
		times, zeta, err := s.Cell(i)
		if err != nil {
			return err
		}
		xys := make(plotter.XYs, len(times))
		for j := range times {
			xys[j].X = times[j]
			xys[j].Y = zeta[j]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i / 7)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("cell %d", i), l)
	}
	p.Legend.Top = true
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("swi: saving plot: %v", err)
	}
	return nil
}

// WriteMetrics writes the metrics gathered from g to path in the
// Prometheus text format.
func WriteMetrics(path string, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("swi: gathering metrics: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("swi: creating metrics file: %v", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return fmt.Errorf("swi: writing metrics: %v", err)
		}
	}
	return f.Close()
}
