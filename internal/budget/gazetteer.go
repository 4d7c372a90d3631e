package budget

import (
	"strings"

	"github.com/roamio/tripscout/internal/geo"
)

// cityCoordinates is a small offline gazetteer of well-known
// destinations, used when the caller supplies a city name instead of
// coordinates.
var cityCoordinates = map[string]geo.Coordinate{
	// India
	"mumbai":       {Lat: 19.0760, Lon: 72.8777},
	"delhi":        {Lat: 28.7041, Lon: 77.1025},
	"bangalore":    {Lat: 12.9716, Lon: 77.5946},
	"bengaluru":    {Lat: 12.9716, Lon: 77.5946},
	"chennai":      {Lat: 13.0827, Lon: 80.2707},
	"kolkata":      {Lat: 22.5726, Lon: 88.3639},
	"hyderabad":    {Lat: 17.3850, Lon: 78.4867},
	"pune":         {Lat: 18.5204, Lon: 73.8567},
	"ahmedabad":    {Lat: 23.0225, Lon: 72.5714},
	"jaipur":       {Lat: 26.9124, Lon: 75.7873},
	"goa":          {Lat: 15.2993, Lon: 74.1240},
	"kerala":       {Lat: 10.8505, Lon: 76.2711},
	"marathahalli": {Lat: 12.9591, Lon: 77.7011},
	"whitefield":   {Lat: 12.9698, Lon: 77.7500},
	"koramangala":  {Lat: 12.9352, Lon: 77.6245},

	// Asia
	"bangkok":      {Lat: 13.7563, Lon: 100.5018},
	"tokyo":        {Lat: 35.6762, Lon: 139.6503},
	"singapore":    {Lat: 1.3521, Lon: 103.8198},
	"hong kong":    {Lat: 22.3193, Lon: 114.1694},
	"seoul":        {Lat: 37.5665, Lon: 126.9780},
	"beijing":      {Lat: 39.9042, Lon: 116.4074},
	"shanghai":     {Lat: 31.2304, Lon: 121.4737},
	"kuala lumpur": {Lat: 3.1390, Lon: 101.6869},
	"bali":         {Lat: -8.3405, Lon: 115.0920},
	"dubai":        {Lat: 25.2048, Lon: 55.2708},

	// Europe
	"london":    {Lat: 51.5074, Lon: -0.1278},
	"paris":     {Lat: 48.8566, Lon: 2.3522},
	"rome":      {Lat: 41.9028, Lon: 12.4964},
	"barcelona": {Lat: 41.3851, Lon: 2.1734},
	"amsterdam": {Lat: 52.3676, Lon: 4.9041},
	"berlin":    {Lat: 52.5200, Lon: 13.4050},

	// Americas
	"new york":      {Lat: 40.7128, Lon: -74.0060},
	"los angeles":   {Lat: 34.0522, Lon: -118.2437},
	"san francisco": {Lat: 37.7749, Lon: -122.4194},
	"miami":         {Lat: 25.7617, Lon: -80.1918},
	"toronto":       {Lat: 43.6532, Lon: -79.3832},
}

// Geocode resolves a city name against the offline gazetteer. Partial
// matches in either direction are accepted. The second return value
// reports whether the city was found.
func Geocode(city string) (geo.Coordinate, bool) {
	name := strings.ToLower(strings.TrimSpace(city))

	if c, ok := cityCoordinates[name]; ok {
		return c, true
	}
	for known, c := range cityCoordinates {
		if strings.Contains(name, known) || strings.Contains(known, name) {
			return c, true
		}
	}
	return geo.Coordinate{}, false
}
