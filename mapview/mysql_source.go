package mapview

import (
	"context"
	"database/sql"

	"github.com/apex/log"
)

// MySQLSource serves facilities from the facilities table of the remote
// store.
type MySQLSource struct {
	db *sql.DB
}

func NewMySQLSource(db *sql.DB) *MySQLSource {
	return &MySQLSource{db: db}
}

func (s *MySQLSource) FacilitiesInViewport(ctx context.Context, vp Viewport) ([]Facility, error) {
	rows, err := s.db.QueryContext(ctx, `
	  SELECT name, kind, latitude, longitude
	  FROM facilities
	  WHERE latitude > ? AND longitude > ?
	    AND latitude <= ? AND longitude <= ?`,
		vp.LatMin, vp.LonMin, vp.LatMax, vp.LonMax)
	if err != nil {
		log.Errorf("Could not retrieve facilities: %v", err)
		return nil, err
	}
	defer rows.Close()

	facilities := make([]Facility, 0, 100)
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.Name, &f.Kind, &f.Latitude, &f.Longitude); err != nil {
			log.Warnf("Cannot scan a facility row: %v", err)
			continue
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}
