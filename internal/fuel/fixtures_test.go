package fuel

import "time"

var t0 = time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

func open(id string, prices map[Kind]float64) StationReading {
	return StationReading{
		ID:     id,
		Info:   StationInfo{Brand: "Brand " + id, Name: "Station " + id},
		Open:   true,
		Prices: prices,
	}
}

func closed(id string, prices map[Kind]float64) StationReading {
	r := open(id, prices)
	r.Open = false
	return r
}

func diesel(p float64) map[Kind]float64 {
	return map[Kind]float64{KindDiesel: p}
}

func snap(ts time.Time, readings ...StationReading) Snapshot {
	return Snapshot{Timestamp: ts, Stations: readings}
}

func history(snaps ...Snapshot) History {
	return History{Snapshots: snaps}
}
