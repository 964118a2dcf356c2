package classifier

// usStates are recognised as GPE entities.
var usStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut",
	"Delaware", "Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa",
	"Kansas", "Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan",
	"Minnesota", "Mississippi", "Missouri", "Montana", "Nebraska", "Nevada",
	"New Hampshire", "New Jersey", "New Mexico", "New York", "North Carolina",
	"North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island",
	"South Carolina", "South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
	"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
	"District of Columbia",
}

// usPlaces are cities and counties recognised as GPE entities. Curated from
// the largest US municipalities plus their counties.
var usPlaces = []string{
	// California
	"Los Angeles", "Los Angeles County", "San Francisco", "San Diego", "San Jose",
	"Oakland", "Sacramento", "Fresno", "Long Beach", "Bakersfield", "Anaheim",
	"Santa Ana", "Riverside", "Stockton", "Irvine", "Pasadena", "Santa Monica",
	"Orange County", "San Diego County", "Alameda County", "Kern County",
	"San Bernardino", "San Bernardino County", "Riverside County",
	// Other states
	"New York City", "Brooklyn", "Queens", "Manhattan", "The Bronx", "Buffalo",
	"Chicago", "Cook County", "Houston", "Harris County", "Dallas", "Austin",
	"San Antonio", "Fort Worth", "El Paso", "Phoenix", "Maricopa County", "Tucson",
	"Philadelphia", "Pittsburgh", "Jacksonville", "Miami", "Miami-Dade County",
	"Tampa", "Orlando", "Columbus", "Cleveland", "Cincinnati", "Indianapolis",
	"Charlotte", "Raleigh", "Seattle", "King County", "Spokane", "Denver", "Boulder",
	"Boston", "Detroit", "Wayne County", "Nashville", "Memphis", "Portland",
	"Las Vegas", "Clark County", "Baltimore", "Milwaukee", "Albuquerque", "Atlanta",
	"Fulton County", "Kansas City", "St. Louis", "Omaha", "Minneapolis", "St. Paul",
	"New Orleans", "Salt Lake City", "Honolulu", "Anchorage", "Louisville",
	"Oklahoma City", "Tulsa", "Richmond", "Newark", "Jersey City", "Providence",
	"Hartford", "Birmingham", "Little Rock", "Des Moines", "Boise", "Cañon City",
}
