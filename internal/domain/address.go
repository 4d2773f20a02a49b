package domain

import "fmt"

// NoNumber is printed when the geocoder has no house number.
const NoNumber = "S/N"

// FormatAddress joins address components into the report pattern
// "{road}, {number} - {neighborhood}, {city} - {state}".
func FormatAddress(parts AddressParts, state string) string {
	number := parts.HouseNumber
	if number == "" {
		number = NoNumber
	}
	return fmt.Sprintf("%s, %s - %s, %s - %s", parts.Road, number, parts.Neighborhood, parts.City, state)
}
