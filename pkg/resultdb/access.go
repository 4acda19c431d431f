package resultdb

func InsertRun(run *ResultDbRun) error {
	db := GetDB()

	_, err := db.Exec(
		"INSERT INTO runs "+
			"(run_uid, technique, state, line_count, curve_count, point_count, checksum, started_at, finished_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		run.RunUID,
		run.Technique,
		run.State,
		run.LineCount,
		run.CurveCount,
		run.PointCount,
		run.Checksum,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return err
	}
	return nil
}

func InsertSample(sample *ResultDbSample) error {
	db := GetDB()

	_, err := db.Exec(
		"INSERT INTO samples "+
			"(run_uid, curve_idx, row_idx, col_idx, var_id, name, unit, value, text) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sample.RunUID,
		sample.CurveIdx,
		sample.RowIdx,
		sample.ColIdx,
		sample.VarID,
		sample.Name,
		sample.Unit,
		sample.Value,
		sample.Text,
	)
	if err != nil {
		return err
	}
	return nil
}

// HasRunWithChecksum reports whether a run with the same script/data
// checksum was already stored, so replayed broadcasts can be skipped.
func HasRunWithChecksum(checksum uint16) (bool, error) {
	db := GetDB()

	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM runs WHERE checksum = ?",
		checksum,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetColumnValues returns the numeric values of one package column of a
// stored run, ordered the way the instrument emitted them. NaN samples
// were stored as NULL and come back as nil entries.
func GetColumnValues(runUID string, colIdx int) ([]*float64, error) {
	db := GetDB()

	rows, err := db.Query(
		"SELECT value FROM samples "+
			"WHERE run_uid = ? AND col_idx = ? "+
			"ORDER BY curve_idx, row_idx",
		runUID,
		colIdx,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []*float64
	for rows.Next() {
		var v *float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
