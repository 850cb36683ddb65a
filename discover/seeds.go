package discover

// Seed is one starting point for the global nearby-search crawl.
type Seed struct {
	Lat float64
	Lon float64
}

// globalSeeds spreads the crawl across population centers on every
// continent so the pool is not dominated by any one region.
var globalSeeds = []Seed{
	// North America
	{40.7128, -74.0060},   // New York
	{34.0522, -118.2437},  // Los Angeles
	{41.8781, -87.6298},   // Chicago
	{49.2827, -123.1207},  // Vancouver
	{25.7617, -80.1918},   // Miami
	{29.7604, -95.3698},   // Houston
	{19.4326, -99.1332},   // Mexico City
	{45.5019, -73.5674},   // Montreal
	{61.2181, -149.9003},  // Anchorage

	// South America
	{-23.5505, -46.6333},  // São Paulo
	{-34.6037, -58.3816},  // Buenos Aires
	{-12.0464, -77.0428},  // Lima
	{-33.4489, -70.6693},  // Santiago
	{4.7110, -74.0721},    // Bogotá

	// Europe
	{51.5074, -0.1278},    // London
	{48.8566, 2.3522},     // Paris
	{52.5200, 13.4050},    // Berlin
	{41.9028, 12.4964},    // Rome
	{40.4168, -3.7038},    // Madrid
	{59.3293, 18.0686},    // Stockholm
	{60.1699, 24.9384},    // Helsinki
	{55.6761, 12.5683},    // Copenhagen
	{52.3676, 4.9041},     // Amsterdam
	{64.1466, -21.9426},   // Reykjavik

	// Africa
	{30.0444, 31.2357},    // Cairo
	{6.5244, 3.3792},      // Lagos
	{-1.2921, 36.8219},    // Nairobi
	{-26.2041, 28.0473},   // Johannesburg
	{-33.9249, 18.4241},   // Cape Town
	{33.5731, -7.5898},    // Casablanca

	// Middle East
	{25.2048, 55.2708},    // Dubai
	{24.7136, 46.6753},    // Riyadh
	{31.7683, 35.2137},    // Jerusalem
	{41.0082, 28.9784},    // Istanbul

	// Asia
	{35.6895, 139.6917},   // Tokyo
	{37.5665, 126.9780},   // Seoul
	{31.2304, 121.4737},   // Shanghai
	{22.3193, 114.1694},   // Hong Kong
	{1.3521, 103.8198},    // Singapore
	{13.7563, 100.5018},   // Bangkok
	{28.6139, 77.2090},    // Delhi
	{19.0760, 72.8777},    // Mumbai
	{-6.2088, 106.8456},   // Jakarta

	// Oceania
	{-33.8688, 151.2093},  // Sydney
	{-37.8136, 144.9631},  // Melbourne
	{-36.8485, 174.7633},  // Auckland
	{-31.9523, 115.8613},  // Perth
}

// SeedCount returns the number of crawl starting points.
func SeedCount() int {
	return len(globalSeeds)
}
