package models

import "time"

// Current holds the parsed current-weather fields for one location.
type Current struct {
	Location     string    `json:"location"`
	Country      string    `json:"country"`
	Temperature  float64   `json:"temperature"`
	FeelsLike    float64   `json:"feelsLike"`
	Condition    string    `json:"condition"`
	Humidity     int       `json:"humidity"`
	Pressure     int       `json:"pressure"`
	VisibilityKM float64   `json:"visibilityKm"`
	WindSpeed    float64   `json:"windSpeed"`
	WindDeg      int       `json:"windDeg"`
	Sunrise      time.Time `json:"sunrise"`
	Sunset       time.Time `json:"sunset"`
}

// ForecastPoint is one 3-hour interval from the forecast endpoint.
type ForecastPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Condition   string    `json:"condition"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
}

// Report is the unit stored in cache and handed to the presenter: current
// conditions plus forecast points, stamped with the fetch time. Forecast may
// be empty when the forecast endpoint failed; current data is still shown.
type Report struct {
	Current   Current         `json:"current"`
	Forecast  []ForecastPoint `json:"forecast"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Cached    bool            `json:"-"` // set when served from cache, never stored
}
