// Package codec maps human-readable station, time and ticket representations
// onto the wire formats the THSR booking site expects, and back.
package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Station is a THSR station code. Codes are 1-based and contiguous; the
// ordering follows the line from north to south.
type Station int

const (
	Nangang Station = iota + 1
	Taipei
	Banqiao
	Taoyuan
	Hsinchu
	Miaoli
	Taichung
	Changhua
	Yunlin
	Chiayi
	Tainan
	Zuoying
)

const (
	minStationCode = int(Nangang)
	maxStationCode = int(Zuoying)
)

// stationDisplayNames maps each station to the name shown to users and
// accepted in configuration files. Bijective with the code set.
var stationDisplayNames = map[Station]string{
	Nangang:  "南港",
	Taipei:   "台北",
	Banqiao:  "板橋",
	Taoyuan:  "桃園",
	Hsinchu:  "新竹",
	Miaoli:   "苗栗",
	Taichung: "台中",
	Changhua: "彰化",
	Yunlin:   "雲林",
	Chiayi:   "嘉義",
	Tainan:   "台南",
	Zuoying:  "左營",
}

var stationKeys = map[string]Station{
	"Nangang":  Nangang,
	"Taipei":   Taipei,
	"Banqiao":  Banqiao,
	"Taoyuan":  Taoyuan,
	"Hsinchu":  Hsinchu,
	"Miaoli":   Miaoli,
	"Taichung": Taichung,
	"Changhua": Changhua,
	"Yunlin":   Yunlin,
	"Chiayi":   Chiayi,
	"Tainan":   Tainan,
	"Zuoying":  Zuoying,
}

// Key returns the symbolic (romanized) name for the station.
func (s Station) Key() string {
	for key, st := range stationKeys {
		if st == s {
			return key
		}
	}
	return ""
}

// String returns the display name for the station, or the numeric code for
// values outside the known set.
func (s Station) String() string {
	if name, ok := stationDisplayNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

// Code returns the numeric wire value submitted to the site.
func (s Station) Code() int { return int(s) }

// Valid reports whether s is inside the closed station set.
func (s Station) Valid() bool {
	return int(s) >= minStationCode && int(s) <= maxStationCode
}

// Stations returns all stations in code order.
func Stations() []Station {
	out := make([]Station, 0, maxStationCode)
	for c := minStationCode; c <= maxStationCode; c++ {
		out = append(out, Station(c))
	}
	return out
}

// InvalidStationError reports a station name that matched nothing in the
// closed set. The message enumerates the valid display names.
type InvalidStationError struct {
	Name string
}

func (e *InvalidStationError) Error() string {
	names := make([]string, 0, maxStationCode)
	for _, s := range Stations() {
		names = append(names, s.String())
	}
	return fmt.Sprintf("invalid station %q, valid stations: %s", e.Name, strings.Join(names, ", "))
}

// StationToCode resolves a station from a display name, a symbolic key, or a
// numeric string in [1,12], tried in that order.
func StationToCode(name string) (Station, error) {
	name = strings.TrimSpace(name)
	for st, display := range stationDisplayNames {
		if name == display {
			return st, nil
		}
	}
	if st, ok := stationKeys[name]; ok {
		return st, nil
	}
	if code, err := strconv.Atoi(name); err == nil {
		if st := Station(code); st.Valid() {
			return st, nil
		}
	}
	return 0, &InvalidStationError{Name: name}
}
