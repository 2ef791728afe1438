package connector

import "database/sql"

// ConnectionStats represents database connection pool statistics.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
}

func (s ConnectionStats) add(o ConnectionStats) ConnectionStats {
	return ConnectionStats{
		OpenConnections: s.OpenConnections + o.OpenConnections,
		InUse:           s.InUse + o.InUse,
		Idle:            s.Idle + o.Idle,
	}
}

func statsFromDB(s sql.DBStats) ConnectionStats {
	return ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}
}
