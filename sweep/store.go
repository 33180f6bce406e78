package sweep

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/epiforge/episim/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                   TEXT PRIMARY KEY,
	scenario             TEXT NOT NULL,
	iteration            INTEGER NOT NULL,
	seed                 INTEGER NOT NULL,
	days                 INTEGER NOT NULL,
	peak_infected_pct    REAL NOT NULL,
	peak_day             INTEGER NOT NULL,
	peak_r0              REAL NOT NULL,
	mean_r0              REAL NOT NULL,
	final_dead           INTEGER NOT NULL,
	final_recovered_pct  REAL NOT NULL,
	final_vaccinated_pct REAL NOT NULL,
	created_at           TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshots (
	run_id            TEXT NOT NULL REFERENCES runs(id),
	day               INTEGER NOT NULL,
	susceptible_pct   REAL NOT NULL,
	exposed_pct       REAL NOT NULL,
	infected_pct      REAL NOT NULL,
	recovered_pct     REAL NOT NULL,
	dead              INTEGER NOT NULL,
	severe            INTEGER NOT NULL,
	hospital_capacity REAL NOT NULL,
	vaccinated_pct    REAL NOT NULL,
	r0                REAL NOT NULL,
	wealth_q0         REAL NOT NULL,
	wealth_q1         REAL NOT NULL,
	wealth_q2         REAL NOT NULL,
	wealth_q3         REAL NOT NULL,
	wealth_q4         REAL NOT NULL,
	PRIMARY KEY (run_id, day)
);
`

// Store persists sweep results to a SQLite database. Only the public
// snapshot contract is written, never internal agent state.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) a results database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sweep: open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sweep: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveResult writes one run row plus its snapshot rows in a transaction.
func (s *Store) SaveResult(r Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sweep: save result: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (
		id, scenario, iteration, seed, days,
		peak_infected_pct, peak_day, peak_r0, mean_r0,
		final_dead, final_recovered_pct, final_vaccinated_pct, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Scenario, r.Iteration, r.Seed, r.Days,
		r.Summary.PeakInfectedPct, r.Summary.PeakDay, r.Summary.PeakR0, r.Summary.MeanR0,
		r.Summary.FinalDead, r.Summary.FinalRecoveredPct, r.Summary.FinalVaccinatedPct,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sweep: insert run %s: %w", r.RunID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO snapshots (
		run_id, day, susceptible_pct, exposed_pct, infected_pct, recovered_pct,
		dead, severe, hospital_capacity, vaccinated_pct, r0,
		wealth_q0, wealth_q1, wealth_q2, wealth_q3, wealth_q4
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sweep: prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range r.Snapshots {
		if _, err := stmt.Exec(
			r.RunID, snap.Day,
			snap.SusceptiblePct, snap.ExposedPct, snap.InfectedPct, snap.RecoveredPct,
			snap.Dead, snap.Severe, snap.HospitalCapacity, snap.VaccinatedPct, snap.R0,
			snap.WealthByStratum[0], snap.WealthByStratum[1], snap.WealthByStratum[2],
			snap.WealthByStratum[3], snap.WealthByStratum[4],
		); err != nil {
			return fmt.Errorf("sweep: insert snapshot day %d of run %s: %w", snap.Day, r.RunID, err)
		}
	}

	return tx.Commit()
}

// StoredRun is one persisted run row.
type StoredRun struct {
	RunID     string
	Scenario  string
	Iteration int
	Seed      int64
	Days      int
	Summary   Summary
}

// Runs lists persisted runs, optionally filtered to one scenario name
// (empty selects all), newest first.
func (s *Store) Runs(scenario string) ([]StoredRun, error) {
	query := `SELECT id, scenario, iteration, seed, days,
		peak_infected_pct, peak_day, peak_r0, mean_r0,
		final_dead, final_recovered_pct, final_vaccinated_pct
	FROM runs`
	args := []any{}
	if scenario != "" {
		query += ` WHERE scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("sweep: list runs: %w", err)
	}
	defer rows.Close()

	var out []StoredRun
	for rows.Next() {
		var r StoredRun
		if err := rows.Scan(
			&r.RunID, &r.Scenario, &r.Iteration, &r.Seed, &r.Days,
			&r.Summary.PeakInfectedPct, &r.Summary.PeakDay, &r.Summary.PeakR0, &r.Summary.MeanR0,
			&r.Summary.FinalDead, &r.Summary.FinalRecoveredPct, &r.Summary.FinalVaccinatedPct,
		); err != nil {
			return nil, fmt.Errorf("sweep: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSnapshots loads the persisted snapshot series of one run in day order.
func (s *Store) RunSnapshots(runID string) ([]model.Snapshot, error) {
	rows, err := s.db.Query(`SELECT day, susceptible_pct, exposed_pct, infected_pct,
		recovered_pct, dead, severe, hospital_capacity, vaccinated_pct, r0,
		wealth_q0, wealth_q1, wealth_q2, wealth_q3, wealth_q4
	FROM snapshots WHERE run_id = ? ORDER BY day`, runID)
	if err != nil {
		return nil, fmt.Errorf("sweep: load snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		if err := rows.Scan(
			&snap.Day, &snap.SusceptiblePct, &snap.ExposedPct, &snap.InfectedPct,
			&snap.RecoveredPct, &snap.Dead, &snap.Severe, &snap.HospitalCapacity,
			&snap.VaccinatedPct, &snap.R0,
			&snap.WealthByStratum[0], &snap.WealthByStratum[1], &snap.WealthByStratum[2],
			&snap.WealthByStratum[3], &snap.WealthByStratum[4],
		); err != nil {
			return nil, fmt.Errorf("sweep: scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
