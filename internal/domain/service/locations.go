package service

import "github.com/bibbank/fraudwatch/internal/domain/model"

// Location is one named bucket of the synthetic geo view.
type Location struct {
	City        string
	Coordinates model.Coordinates
}

// Locations is the fixed, ordered set of geo buckets. Order matters: the
// bucket index is computed modulo len(Locations).
var Locations = []Location{
	{City: "Bhopal", Coordinates: model.Coordinates{Lat: 23.2599, Lng: 77.4126, District: "Bhopal"}},
	{City: "Indore", Coordinates: model.Coordinates{Lat: 22.7196, Lng: 75.8577, District: "Indore"}},
	{City: "Jabalpur", Coordinates: model.Coordinates{Lat: 23.1815, Lng: 79.9864, District: "Jabalpur"}},
	{City: "Gwalior", Coordinates: model.Coordinates{Lat: 26.2183, Lng: 78.1828, District: "Gwalior"}},
	{City: "Ujjain", Coordinates: model.Coordinates{Lat: 23.1765, Lng: 75.7885, District: "Ujjain"}},
	{City: "Sagar", Coordinates: model.Coordinates{Lat: 23.8388, Lng: 78.7378, District: "Sagar"}},
	{City: "Dewas", Coordinates: model.Coordinates{Lat: 22.9676, Lng: 76.0534, District: "Dewas"}},
	{City: "Satna", Coordinates: model.Coordinates{Lat: 24.5670, Lng: 80.8320, District: "Satna"}},
	{City: "Ratlam", Coordinates: model.Coordinates{Lat: 23.3315, Lng: 75.0367, District: "Ratlam"}},
	{City: "Rewa", Coordinates: model.Coordinates{Lat: 24.5364, Lng: 81.2964, District: "Rewa"}},
	{City: "Singrauli", Coordinates: model.Coordinates{Lat: 24.1992, Lng: 82.6739, District: "Singrauli"}},
	{City: "Burhanpur", Coordinates: model.Coordinates{Lat: 21.3009, Lng: 76.2291, District: "Burhanpur"}},
	{City: "Khandwa", Coordinates: model.Coordinates{Lat: 21.8343, Lng: 76.3569, District: "Khandwa"}},
	{City: "Bhind", Coordinates: model.Coordinates{Lat: 26.5653, Lng: 78.7875, District: "Bhind"}},
	{City: "Chhindwara", Coordinates: model.Coordinates{Lat: 22.0572, Lng: 78.9315, District: "Chhindwara"}},
	{City: "Guna", Coordinates: model.Coordinates{Lat: 24.6537, Lng: 77.3112, District: "Guna"}},
	{City: "Shivpuri", Coordinates: model.Coordinates{Lat: 25.4244, Lng: 77.6581, District: "Shivpuri"}},
	{City: "Vidisha", Coordinates: model.Coordinates{Lat: 23.5251, Lng: 77.8081, District: "Vidisha"}},
	{City: "Chhatarpur", Coordinates: model.Coordinates{Lat: 24.9178, Lng: 79.5941, District: "Chhatarpur"}},
}
