package resultdb

type ResultDbRun struct {
	RunUID     string `db:"run_uid"`
	Technique  string `db:"technique"`
	State      string `db:"state"`
	LineCount  int    `db:"line_count"`
	CurveCount int    `db:"curve_count"`
	PointCount int    `db:"point_count"`
	Checksum   uint16 `db:"checksum"`
	StartedAt  int64  `db:"started_at"`
	FinishedAt int64  `db:"finished_at"`
}

type ResultDbSample struct {
	RunUID   string   `db:"run_uid"`
	CurveIdx int      `db:"curve_idx"`
	RowIdx   int      `db:"row_idx"`
	ColIdx   int      `db:"col_idx"`
	VarID    string   `db:"var_id"`
	Name     string   `db:"name"`
	Unit     string   `db:"unit"`
	Value    *float64 `db:"value"` // nil for NaN readings
	Text     string   `db:"text"`
}
