package location

// DefaultLocations returns the built-in catalog of Sri Lankan service points.
func DefaultLocations() []Location {
	return []Location{
		{Name: "Colombo", Latitude: 6.9271, Longitude: 79.8612, District: "Colombo", Province: "Western"},
		{Name: "Kandy", Latitude: 7.2906, Longitude: 80.6337, District: "Kandy", Province: "Central"},
		{Name: "Galle", Latitude: 6.0535, Longitude: 80.2210, District: "Galle", Province: "Southern"},
		{Name: "Jaffna", Latitude: 9.6615, Longitude: 80.0255, District: "Jaffna", Province: "Northern"},
		{Name: "Negombo", Latitude: 7.2008, Longitude: 79.8737, District: "Gampaha", Province: "Western"},
		{Name: "Anuradhapura", Latitude: 8.3114, Longitude: 80.4037, District: "Anuradhapura", Province: "North Central"},
		{Name: "Trincomalee", Latitude: 8.5874, Longitude: 81.2152, District: "Trincomalee", Province: "Eastern"},
		{Name: "Batticaloa", Latitude: 7.7310, Longitude: 81.6747, District: "Batticaloa", Province: "Eastern"},
		{Name: "Matara", Latitude: 5.9549, Longitude: 80.5550, District: "Matara", Province: "Southern"},
		{Name: "Kurunegala", Latitude: 7.4863, Longitude: 80.3623, District: "Kurunegala", Province: "North Western"},
		{Name: "Ratnapura", Latitude: 6.6828, Longitude: 80.3992, District: "Ratnapura", Province: "Sabaragamuwa"},
		{Name: "Badulla", Latitude: 6.9934, Longitude: 81.0550, District: "Badulla", Province: "Uva"},
		{Name: "Nuwara Eliya", Latitude: 6.9497, Longitude: 80.7891, District: "Nuwara Eliya", Province: "Central"},
		{Name: "Polonnaruwa", Latitude: 7.9403, Longitude: 81.0188, District: "Polonnaruwa", Province: "North Central"},
		{Name: "Hambantota", Latitude: 6.1241, Longitude: 81.1185, District: "Hambantota", Province: "Southern"},
		{Name: "Vavuniya", Latitude: 8.7514, Longitude: 80.4971, District: "Vavuniya", Province: "Northern"},
		{Name: "Kalutara", Latitude: 6.5854, Longitude: 79.9607, District: "Kalutara", Province: "Western"},
		{Name: "Gampaha", Latitude: 7.0840, Longitude: 80.0098, District: "Gampaha", Province: "Western"},
		{Name: "Puttalam", Latitude: 8.0362, Longitude: 79.8283, District: "Puttalam", Province: "North Western"},
		{Name: "Kegalle", Latitude: 7.2513, Longitude: 80.3464, District: "Kegalle", Province: "Sabaragamuwa"},
	}
}

// NewDefaultRegistry creates a registry over DefaultLocations.
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultLocations())
}
